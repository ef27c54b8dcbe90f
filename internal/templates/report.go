package templates

import (
	"strings"

	"github.com/ttani03/inetnums/internal/models"
)

// Section is the result of one (organisation, family) query.
type Section struct {
	OrgID  string
	Family models.Family
	Header string
	Rows   []models.Row
	// Error is the registry's message when the query failed.
	Error string
}

func (s Section) Columns() []string {
	return strings.Split(s.Header, ",")
}
