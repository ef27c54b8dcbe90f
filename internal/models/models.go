package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Family is an address family; it also selects the registry object type.
type Family int

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

// ObjectType returns the registry object type queried for the family.
func (f Family) ObjectType() string {
	if f == IPv6 {
		return "inet6num"
	}
	return "inetnum"
}

func (f Family) String() string {
	return fmt.Sprintf("IPv%d", int(f))
}

// Selection is the set of status categories requested for a run.
type Selection struct {
	Assigned     bool
	Allocated    bool
	SubAllocated bool
	Legacy       bool
}

func (s Selection) Any() bool {
	return s.Assigned || s.Allocated || s.SubAllocated || s.Legacy
}

type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Object struct {
	Type       string `json:"type"`
	Attributes struct {
		Attribute []Attribute `json:"attribute"`
	} `json:"attributes"`
}

type ObjectList struct {
	Object []Object `json:"object"`
}

// SearchResponse is the subset of a RIPE REST search reply that is consumed.
// Objects is nil when the query failed upstream.
type SearchResponse struct {
	Objects       *ObjectList     `json:"objects"`
	ErrorMessages json.RawMessage `json:"errormessages"`
}

type errorMessage struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
	Args     []struct {
		Value string `json:"value"`
	} `json:"args"`
}

// HasErrorMessages reports whether the response carries an errormessages
// payload.
func (r *SearchResponse) HasErrorMessages() bool {
	return len(r.ErrorMessages) > 0 && string(r.ErrorMessages) != "null"
}

// ErrorText renders the embedded error messages. Plain string payloads are
// returned as-is, RIPE error lists have their %s arguments substituted.
func (r *SearchResponse) ErrorText() string {
	if !r.HasErrorMessages() {
		return "response contains no objects and no error message"
	}

	var s string
	if err := json.Unmarshal(r.ErrorMessages, &s); err == nil {
		return s
	}

	var list struct {
		ErrorMessage []errorMessage `json:"errormessage"`
	}
	if err := json.Unmarshal(r.ErrorMessages, &list); err != nil || len(list.ErrorMessage) == 0 {
		return string(r.ErrorMessages)
	}

	texts := make([]string, 0, len(list.ErrorMessage))
	for _, m := range list.ErrorMessage {
		text := m.Text
		for _, a := range m.Args {
			text = strings.Replace(text, "%s", a.Value, 1)
		}
		texts = append(texts, strings.TrimSpace(text))
	}
	return strings.Join(texts, "\n")
}

// Record accumulates the attributes of one registry object.
type Record struct {
	Network string
	NetName string
	Status  string
	MntBy   []string
}

// Complete reports whether every attribute needed for a row was seen.
func (r Record) Complete() bool {
	return r.Network != "" && r.NetName != "" && r.Status != ""
}

// Row is one emitted line of output.
type Row struct {
	Network string
	NetName string
	Status  string
	MntBy   []string
}

// CSV joins the row fields with commas. Nothing is quoted, maintainers are
// rendered as a bracketed list: ['A-MNT', 'B-MNT'].
func (r Row) CSV() string {
	return strings.Join([]string{r.Network, r.NetName, r.Status, MaintainerList(r.MntBy)}, ",")
}

func MaintainerList(mnts []string) string {
	quoted := make([]string, len(mnts))
	for i, m := range mnts {
		quoted[i] = "'" + m + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Allocation is a row persisted in the result store.
type Allocation struct {
	ID        pgtype.UUID `json:"id"`
	OrgID     string      `json:"org_id"`
	Family    Family      `json:"family"`
	Network   string      `json:"network"`
	NetName   string      `json:"netname"`
	Status    string      `json:"status"`
	MntBy     []string    `json:"mnt_by"`
	FetchedAt time.Time   `json:"fetched_at"`
}
