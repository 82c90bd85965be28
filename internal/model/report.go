package model

// SearchReport holds the occurrences of a needle found in a single file.
type SearchReport struct {
	Path    Path   `yaml:"path"`
	Needle  string `yaml:"needle"`
	Offsets []int  `yaml:"offsets"`
	Err     error  `yaml:"-"`
	Error   string `yaml:"error,omitempty"`
}

// ReplaceReport holds the outcome of a replace pass over a single file.
type ReplaceReport struct {
	Path    Path   `yaml:"path"`
	Old     string `yaml:"old"`
	New     string `yaml:"new"`
	Count   int    `yaml:"count"`
	Written bool   `yaml:"written"`
	Diff    string `yaml:"diff,omitempty"`
	Err     error  `yaml:"-"`
	Error   string `yaml:"error,omitempty"`
}

// Failed reports whether the search could not be performed.
func (r SearchReport) Failed() bool {
	return r.Err != nil
}

// Failed reports whether the replace could not be performed.
func (r ReplaceReport) Failed() bool {
	return r.Err != nil
}
