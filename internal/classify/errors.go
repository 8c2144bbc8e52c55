package classify

import "fmt"

// TaxonomyError is returned for an unrecognized taxonomy name
type TaxonomyError struct {
	Name string
}

func (e *TaxonomyError) Error() string {
	return fmt.Sprintf("unknown taxonomy %q (want %q or %q)", e.Name, TaxonomySource, TaxonomyContent)
}
