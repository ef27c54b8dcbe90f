// Package filter selects inetnum and inet6num objects by allocation status.
package filter

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/ttani03/inetnums/internal/cidr"
	"github.com/ttani03/inetnums/internal/models"
)

var (
	// ErrUpstream is returned when a response carries no object collection.
	ErrUpstream = errors.New("registry query failed")
	// ErrMissingData marks an object lacking an attribute needed for a row.
	ErrMissingData = errors.New("record is missing required attributes")
)

// UpstreamError carries the registry's own error message. It matches
// ErrUpstream under errors.Is.
type UpstreamError struct {
	Msg string
}

func (e *UpstreamError) Error() string {
	return ErrUpstream.Error() + ": " + e.Msg
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

type category int

const (
	uncategorized category = iota
	assigned
	allocated
	subAllocated
	legacy
)

var ipv4Statuses = map[string]category{
	"ALLOCATED PA":          allocated,
	"ALLOCATED UNSPECIFIED": allocated,
	"SUB-ALLOCATED PA":      subAllocated,
	"ASSIGNED PA":           assigned,
	"ASSIGNED PI":           assigned,
	"LEGACY":                legacy,
}

var ipv6Statuses = map[string]category{
	"ALLOCATED-BY-RIR":  allocated,
	"ALLOCATED-BY-LIR":  subAllocated,
	"ASSIGNED":          assigned,
	"AGGREGATED-BY-LIR": assigned,
	"LEGACY":            legacy,
}

// Filter turns a search response into output rows for one address family.
type Filter struct {
	Family    models.Family
	Selection models.Selection
	// CIDR replaces IPv4 ranges with their CIDR blocks. Ignored for IPv6.
	CIDR   bool
	Logger *log.Logger
}

func (f Filter) cidrMode() bool {
	return f.CIDR && f.Family == models.IPv4
}

// Header returns the CSV header line.
func (f Filter) Header() string {
	first := f.Family.ObjectType()
	if f.cidrMode() {
		first = "cidr"
	}
	return first + ",netname,status,mnt-by"
}

// Matches reports whether status is one of the selected categories.
func (f Filter) Matches(status string) bool {
	statuses := ipv4Statuses
	if f.Family == models.IPv6 {
		statuses = ipv6Statuses
	}

	switch statuses[status] {
	case assigned:
		return f.Selection.Assigned
	case allocated:
		return f.Selection.Allocated
	case subAllocated:
		return f.Selection.SubAllocated
	case legacy:
		return f.Selection.Legacy
	}
	return false
}

// Collect reads the attributes of one object into a Record.
func Collect(obj models.Object) (models.Record, error) {
	var rec models.Record
	for _, attr := range obj.Attributes.Attribute {
		switch attr.Name {
		case "inetnum", "inet6num":
			rec.Network = attr.Value
		case "netname":
			rec.NetName = attr.Value
		case "status":
			rec.Status = attr.Value
		case "mnt-by":
			rec.MntBy = append(rec.MntBy, attr.Value)
		}
	}
	if !rec.Complete() {
		return rec, fmt.Errorf("%w: inetnum=%q netname=%q status=%q", ErrMissingData, rec.Network, rec.NetName, rec.Status)
	}
	return rec, nil
}

// Apply returns the rows for every selected object in resp. A response with
// no object collection yields an *UpstreamError carrying the registry's
// message.
func (f Filter) Apply(resp *models.SearchResponse) ([]models.Row, error) {
	if resp == nil {
		return nil, &UpstreamError{Msg: "empty response"}
	}
	if resp.Objects == nil || (resp.Objects.Object == nil && resp.HasErrorMessages()) {
		return nil, &UpstreamError{Msg: resp.ErrorText()}
	}

	logger := f.logger()
	var rows []models.Row
	for _, obj := range resp.Objects.Object {
		rec, err := Collect(obj)
		if err != nil {
			logger.Debug("skipping record", "err", err)
			continue
		}
		if !f.Matches(rec.Status) {
			continue
		}

		if !f.cidrMode() {
			rows = append(rows, newRow(rec.Network, rec))
			continue
		}

		blocks, err := cidr.FromInetnum(rec.Network)
		if err != nil {
			logger.Warn("skipping record", "netname", rec.NetName, "err", err)
			continue
		}
		for _, b := range blocks {
			rows = append(rows, newRow(b.String(), rec))
		}
	}
	return rows, nil
}

// Render writes the header followed by the selected rows, or by the upstream
// error message when the query failed. Only write errors are returned.
func (f Filter) Render(w io.Writer, resp *models.SearchResponse) error {
	rows, err := f.Apply(resp)
	return f.WriteCSV(w, rows, err)
}

// WriteCSV writes the header, then queryErr's message if it is set or the
// rows otherwise.
func (f Filter) WriteCSV(w io.Writer, rows []models.Row, queryErr error) error {
	if _, err := fmt.Fprintln(w, f.Header()); err != nil {
		return err
	}
	if queryErr != nil {
		_, err := fmt.Fprintln(w, UpstreamMessage(queryErr))
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, r.CSV()); err != nil {
			return err
		}
	}
	return nil
}

// UpstreamMessage returns the registry message carried by err, or err's text
// when it holds no *UpstreamError.
func UpstreamMessage(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Msg
	}
	return err.Error()
}

func (f Filter) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return log.Default()
}

func newRow(network string, rec models.Record) models.Row {
	return models.Row{
		Network: network,
		NetName: rec.NetName,
		Status:  rec.Status,
		MntBy:   slices.Clone(rec.MntBy),
	}
}
