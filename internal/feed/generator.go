package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefeed/feed-service/internal/source"
)

// FeedHook filters or augments the complete row set after mapping. Hooks run
// in registration order; each receives the rows produced so far and returns
// the rows to carry forward.
type FeedHook func(rows []Row) []Row

// Generator orchestrates source, mapper and hooks into full-feed and
// single-product builds. Every build is a self-contained read-compute cycle:
// rows are constructed fresh and never cached.
type Generator struct {
	src      source.Source
	mapper   *Mapper
	settings Settings
	hooks    []FeedHook
	logger   zerolog.Logger
}

// NewGenerator creates a Generator that applies the given settings snapshot
// to every build.
func NewGenerator(src source.Source, mapper *Mapper, settings Settings, logger zerolog.Logger) *Generator {
	return &Generator{
		src:      src,
		mapper:   mapper,
		settings: settings,
		logger:   logger,
	}
}

// OnFeed registers a post-build hook over the complete row set.
func (g *Generator) OnFeed(h FeedHook) {
	g.hooks = append(g.hooks, h)
}

// BuildFeed builds one row per sellable unit. Variable products expand into
// one row per child variation (the parent itself is not emitted); standalone
// variations map against their resolved parent. Source ordering is
// preserved, with variations contiguous in place of their parent. A source
// failure degrades to an empty feed so transport layers keep working.
func (g *Generator) BuildFeed(ctx context.Context) []Row {
	start := time.Now()

	products, err := g.src.Products(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Product source unavailable, returning empty feed")
		return []Row{}
	}

	rows := make([]Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, g.mapProduct(ctx, p)...)
	}

	for _, h := range g.hooks {
		rows = h(rows)
	}

	buildDuration.Observe(time.Since(start).Seconds())
	buildRows.Set(float64(len(rows)))
	g.logger.Info().
		Int("products", len(products)).
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("Feed built")
	return rows
}

// BuildForProduct builds the rows for a single product id: one row for a
// simple product or variation, all variation rows for a variable product,
// and no rows when the id does not resolve.
func (g *Generator) BuildForProduct(ctx context.Context, id int64) []Row {
	p, err := g.src.Product(ctx, id)
	if err != nil {
		g.logger.Warn().Err(err).Int64("product_id", id).Msg("Product lookup failed")
		return []Row{}
	}
	if p == nil {
		return []Row{}
	}
	return g.mapProduct(ctx, p)
}

func (g *Generator) mapProduct(ctx context.Context, p *source.Product) []Row {
	switch p.Type {
	case source.TypeVariable:
		rows := make([]Row, 0, len(p.ChildIDs))
		for _, childID := range p.ChildIDs {
			child, err := g.src.Product(ctx, childID)
			if err != nil || child == nil {
				g.logger.Debug().
					Int64("parent_id", p.ID).
					Int64("variation_id", childID).
					Err(err).
					Msg("Skipping unresolvable variation")
				continue
			}
			rows = append(rows, g.mapper.Map(child, p, g.settings))
		}
		return rows
	case source.TypeVariation:
		return []Row{g.mapper.Map(p, g.resolveParent(ctx, p), g.settings)}
	default:
		return []Row{g.mapper.Map(p, nil, g.settings)}
	}
}

func (g *Generator) resolveParent(ctx context.Context, p *source.Product) *source.Product {
	if p.ParentID == 0 {
		return nil
	}
	parent, err := g.src.Product(ctx, p.ParentID)
	if err != nil {
		g.logger.Debug().Int64("parent_id", p.ParentID).Err(err).Msg("Parent lookup failed")
		return nil
	}
	return parent
}
