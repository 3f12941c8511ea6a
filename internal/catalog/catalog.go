// Package catalog serves job postings from an offline JSON catalog file.
// A Catalog implements both the reference loader and the candidate supplier.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/schemas"
	"github.com/jonathan/job-similarity/internal/types"
	catalogschema "github.com/jonathan/job-similarity/schemas"
)

// Catalog is an immutable in-memory job store. It is safe for concurrent use.
type Catalog struct {
	jobs []types.JobRecord
	byID map[uuid.UUID]int
	now  func() time.Time
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock overrides the time used to decide whether postings have expired.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// New builds a catalog from records. Duplicate ids are rejected.
func New(jobs []types.JobRecord, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		jobs: make([]types.JobRecord, len(jobs)),
		byID: make(map[uuid.UUID]int, len(jobs)),
		now:  time.Now,
	}
	copy(c.jobs, jobs)
	for i := range c.jobs {
		id := c.jobs[i].ID
		if id == uuid.Nil {
			return nil, fmt.Errorf("job at index %d has no id", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("duplicate job id %s", id)
		}
		c.byID[id] = i
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Parse validates data against the catalog schema and decodes it.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	if err := schemas.ValidateBytes(catalogschema.JobCatalog, data); err != nil {
		return nil, fmt.Errorf("invalid job catalog: %w", err)
	}
	var jobs []types.JobRecord
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode job catalog: %w", err)
	}
	return New(jobs, opts...)
}

// Load reads and parses the catalog file at path.
func Load(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job catalog %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Len returns the number of postings in the catalog.
func (c *Catalog) Len() int {
	return len(c.jobs)
}

// All returns a copy of every posting in file order.
func (c *Catalog) All() []types.JobRecord {
	out := make([]types.JobRecord, len(c.jobs))
	copy(out, c.jobs)
	return out
}

// LoadReference returns a copy of the posting with the given id, or (nil, nil) if there is none.
func (c *Catalog) LoadReference(ctx context.Context, id uuid.UUID) (*types.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := c.byID[id]
	if !ok {
		return nil, nil
	}
	job := c.jobs[i]
	return &job, nil
}

// ListCandidates returns active, unexpired postings in the reference's region, excluding the
// reference, newest first. limit <= 0 returns all of them.
func (c *Catalog) ListCandidates(ctx context.Context, ref *types.JobRecord, limit int) ([]types.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := c.now()

	out := make([]types.JobRecord, 0)
	for i := range c.jobs {
		job := &c.jobs[i]
		if job.ID == ref.ID || !job.IsActive(now) || !sameRegion(job.Region, ref.Region) {
			continue
		}
		out = append(out, *job)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sameRegion(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
