package model

// Parameter is an engine parameter declaration or binding.
type Parameter struct {
	Name        string     `json:"name" yaml:"name"`
	Value       *string    `json:"value,omitempty" yaml:"value,omitempty"`
	Default     *string    `json:"default,omitempty" yaml:"default,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []string   `json:"enum,omitempty" yaml:"enum,omitempty"`
	GlobalName  string     `json:"globalName,omitempty" yaml:"globalName,omitempty"`
	ValueFrom   *ValueFrom `json:"valueFrom,omitempty" yaml:"valueFrom,omitempty"`
}

// ValueFrom describes where an output parameter value is read from.
type ValueFrom struct {
	Path       string  `json:"path,omitempty" yaml:"path,omitempty"`
	Parameter  string  `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Expression string  `json:"expression,omitempty" yaml:"expression,omitempty"`
	Default    *string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Artifact is an engine artifact declaration or binding.
type Artifact struct {
	Name           string        `json:"name" yaml:"name"`
	Path           string        `json:"path,omitempty" yaml:"path,omitempty"`
	From           string        `json:"from,omitempty" yaml:"from,omitempty"`
	FromExpression string        `json:"fromExpression,omitempty" yaml:"fromExpression,omitempty"`
	GlobalName     string        `json:"globalName,omitempty" yaml:"globalName,omitempty"`
	Optional       bool          `json:"optional,omitempty" yaml:"optional,omitempty"`
	Mode           *int32        `json:"mode,omitempty" yaml:"mode,omitempty"`
	S3             *S3Artifact   `json:"s3,omitempty" yaml:"s3,omitempty"`
	HTTP           *HTTPArtifact `json:"http,omitempty" yaml:"http,omitempty"`
	Raw            *RawArtifact  `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// S3Artifact locates an artifact in an S3-compatible bucket.
type S3Artifact struct {
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Key      string `json:"key,omitempty" yaml:"key,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// HTTPArtifact locates an artifact at a URL.
type HTTPArtifact struct {
	URL string `json:"url" yaml:"url"`
}

// RawArtifact embeds artifact content inline.
type RawArtifact struct {
	Data string `json:"data" yaml:"data"`
}

// Inputs are the declared inputs of a template.
type Inputs struct {
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Artifacts  []Artifact  `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// Outputs are the declared outputs of a template.
type Outputs struct {
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Artifacts  []Artifact  `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Result     string      `json:"result,omitempty" yaml:"result,omitempty"`
	ExitCode   string      `json:"exitCode,omitempty" yaml:"exitCode,omitempty"`
}

// Arguments bind values to a template's inputs.
type Arguments struct {
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Artifacts  []Artifact  `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// IsEmpty reports whether no parameter or artifact is declared.
func (i *Inputs) IsEmpty() bool {
	return i == nil || (len(i.Parameters) == 0 && len(i.Artifacts) == 0)
}

// IsEmpty reports whether no output is declared.
func (o *Outputs) IsEmpty() bool {
	return o == nil || (len(o.Parameters) == 0 && len(o.Artifacts) == 0 && o.Result == "" && o.ExitCode == "")
}

// IsEmpty reports whether no argument is bound.
func (a *Arguments) IsEmpty() bool {
	return a == nil || (len(a.Parameters) == 0 && len(a.Artifacts) == 0)
}
