// Package dictionary indexes the shared vitamins and minerals tables by id.
package dictionary

import (
	"context"
	"fmt"

	"github.com/zhmu-100/RationService/internal/tablestore"
)

// Entry is the dictionary-level part of a vitamin or mineral.
type Entry struct {
	Name string
	Unit string
}

// Index maps a dictionary id to its entry.
type Index map[string]Entry

// Dictionaries holds both indexes.
type Dictionaries struct {
	Vitamins Index
	Minerals Index
}

// Resolver reads whole dictionary tables on every call; nothing is cached.
type Resolver struct {
	store tablestore.Client
}

// NewResolver returns a Resolver that reads the dictionary tables from store.
func NewResolver(store tablestore.Client) *Resolver {
	return &Resolver{store: store}
}

// Resolve fetches both dictionaries.
func (r *Resolver) Resolve(ctx context.Context) (Dictionaries, error) {
	vits, err := r.Vitamins(ctx)
	if err != nil {
		return Dictionaries{}, err
	}
	mins, err := r.Minerals(ctx)
	if err != nil {
		return Dictionaries{}, err
	}
	return Dictionaries{Vitamins: vits, Minerals: mins}, nil
}

// Vitamins fetches the whole vitamins table and indexes it by id.
func (r *Resolver) Vitamins(ctx context.Context) (Index, error) {
	return r.load(ctx, tablestore.TableVitamins)
}

// Minerals fetches the whole minerals table and indexes it by id.
func (r *Resolver) Minerals(ctx context.Context) (Index, error) {
	return r.load(ctx, tablestore.TableMinerals)
}

func (r *Resolver) load(ctx context.Context, table string) (Index, error) {
	rows, err := r.store.Read(ctx, tablestore.ReadRequest{Table: table})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	idx := make(Index, len(rows))
	for _, row := range rows {
		id := row.String("id")
		if id == "" {
			continue
		}
		idx[id] = Entry{Name: row.String("name"), Unit: row.String("unit")}
	}
	return idx, nil
}
