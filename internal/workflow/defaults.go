package workflow

import "github.com/mattjoyce/dagspec/internal/model"

// Defaults are deployment-wide settings applied to workflows that leave them
// unset.
type Defaults struct {
	APIVersion         string
	Namespace          string
	ServiceAccountName string
	Image              string
	ImagePullPolicy    string
}

// Apply fills w's unset api version, namespace and service account.
func (d Defaults) Apply(w *Workflow) {
	if d.APIVersion != "" && (w.APIVersion == "" || w.APIVersion == model.DefaultAPIVersion) {
		w.APIVersion = d.APIVersion
	}
	if w.Namespace == "" {
		w.Namespace = d.Namespace
	}
	if w.ServiceAccountName == "" {
		w.ServiceAccountName = d.ServiceAccountName
	}
}
