package catalog

import (
	"github.com/devicelab-dev/sirius/pkg/ui"
)

// LoadFiles parses every file and registers the resulting pages in a new
// catalogue.
func LoadFiles(paths ...string) (*ui.Catalog, error) {
	c := ui.NewCatalog()
	if err := LoadInto(c, paths...); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadInto parses every file and registers the pages in c. References
// are resolved across all files before anything is registered, and
// either every page is registered or none is.
func LoadInto(c *ui.Catalog, paths ...string) error {
	var docs []*PageDoc
	for _, path := range paths {
		pages, err := ParseFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, pages...)
	}

	schemas, err := Build(docs)
	if err != nil {
		return err
	}
	return c.RegisterAll(schemas...)
}
