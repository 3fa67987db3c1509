package domain

import "fmt"

// Project is one buildable directory under the assets root
type Project struct {
	Name    string
	Root    string
	Version string
	HasIcon bool
}

// PackageFileName returns "<name>.<version>.<ext>"
func (p Project) PackageFileName(ext string) string {
	return fmt.Sprintf("%s.%s.%s", p.Name, p.Version, ext)
}
