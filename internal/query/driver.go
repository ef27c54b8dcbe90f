// Package query runs the registry lookups for each organisation and family.
package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ttani03/inetnums/internal/filter"
	"github.com/ttani03/inetnums/internal/models"
	"github.com/ttani03/inetnums/internal/templates"
)

type Searcher interface {
	Search(ctx context.Context, org string, family models.Family) (*models.SearchResponse, error)
}

type Store interface {
	SaveRows(ctx context.Context, org string, family models.Family, rows []models.Row) error
}

type Options struct {
	Families  []models.Family
	Selection models.Selection
	CIDR      bool
	// HTML collects every section into one report instead of printing CSV.
	HTML bool
}

type Driver struct {
	searcher Searcher
	// store is optional.
	store  Store
	out    io.Writer
	logger *log.Logger
	opts   Options
}

func NewDriver(searcher Searcher, store Store, out io.Writer, logger *log.Logger, opts Options) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{searcher: searcher, store: store, out: out, logger: logger, opts: opts}
}

// Run queries every organisation in order, one family at a time. Upstream
// errors are printed in the affected section; transport and store failures
// end the run.
func (d *Driver) Run(ctx context.Context, orgs []string) error {
	var sections []templates.Section

	for _, org := range orgs {
		if !d.opts.HTML {
			if _, err := fmt.Fprintf(d.out, "\n%s:\n", org); err != nil {
				return err
			}
		}

		for _, family := range d.opts.Families {
			logger := d.logger.With("org", org, "family", family)
			f := filter.Filter{
				Family:    family,
				Selection: d.opts.Selection,
				CIDR:      d.opts.CIDR,
				Logger:    logger,
			}

			resp, err := d.searcher.Search(ctx, org, family)
			if err != nil {
				return err
			}

			rows, queryErr := f.Apply(resp)
			if queryErr != nil {
				if !errors.Is(queryErr, filter.ErrUpstream) {
					return queryErr
				}
				logger.Info("registry returned an error")
			}
			logger.Debug("query complete", "rows", len(rows))

			if d.opts.HTML {
				s := templates.Section{OrgID: org, Family: family, Header: f.Header(), Rows: rows}
				if queryErr != nil {
					s.Error = filter.UpstreamMessage(queryErr)
				}
				sections = append(sections, s)
			} else if err := f.WriteCSV(d.out, rows, queryErr); err != nil {
				return err
			}

			if d.store != nil {
				if err := d.store.SaveRows(ctx, org, family, rows); err != nil {
					return err
				}
			}
		}
	}

	if d.opts.HTML {
		title := "inet[6]num objects for " + strings.Join(orgs, ", ")
		return templates.Report(title, sections).Render(ctx, d.out)
	}
	return nil
}
