package service

import (
	"context"
	"errors"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/store"
)

// treeDelete describes the removal of one hierarchy node.
type treeDelete struct {
	entity     string
	name       string
	table      store.Table
	id         string
	cascade    bool
	dependents func(ctx context.Context, id string) (store.Dependents, error)
	tree       func(tx *store.Store, ctx context.Context, id string) (store.Dependents, error)
}

// deleteTree counts the dependents first. Without cascade a non-zero count
// fails with no mutation. With cascade the node and its descendants are
// removed bottom-up inside one transaction, so a failure leaves the tree
// untouched.
func (c *Catalogue) deleteTree(ctx context.Context, d treeDelete) (*CascadeReport, error) {
	deps, err := d.dependents(ctx, d.id)
	if err != nil {
		return nil, apperr.StoreFailure("count dependent records", err)
	}
	if deps.Total() > 0 && !d.cascade {
		return nil, apperr.DependentRecords(d.entity, d.name, deps.Total())
	}

	report := &CascadeReport{Entity: d.entity, Name: d.name}
	if !d.cascade {
		if err := c.store.Delete(ctx, d.table, d.id); err != nil {
			return nil, c.deleteErr(ctx, d, err)
		}
	} else {
		err := c.store.WithinTx(ctx, func(tx *store.Store) error {
			removed, err := d.tree(tx, ctx, d.id)
			if err != nil {
				return err
			}
			report.Removed = removed
			return nil
		})
		if err != nil {
			return nil, c.deleteErr(ctx, d, err)
		}
	}

	c.log.InfoContext(ctx, d.entity+" deleted",
		"id", d.id, "name", d.name, "cascade", d.cascade, "removed", report.Removed.Total())
	return report, nil
}

// deleteErr maps a failed delete. A foreign key refusal means children were
// added after they were counted.
func (c *Catalogue) deleteErr(ctx context.Context, d treeDelete, err error) error {
	switch {
	case errors.Is(err, store.ErrReference):
		n := 1
		if deps, cerr := d.dependents(ctx, d.id); cerr == nil && deps.Total() > 0 {
			n = deps.Total()
		}
		return apperr.DependentRecords(d.entity, d.name, n)
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(d.entity, d.name, "")
	default:
		return apperr.StoreFailure("delete the "+d.entity, err)
	}
}

// deleteSection removes one section. Sections have no children.
func (c *Catalogue) deleteSection(ctx context.Context, id, name string) (*CascadeReport, error) {
	if err := c.store.Delete(ctx, store.Sections, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("section", name, "")
		}
		return nil, apperr.StoreFailure("delete the section", err)
	}
	c.log.InfoContext(ctx, "section deleted", "id", id, "name", name)
	return &CascadeReport{Entity: "section", Name: name}, nil
}
