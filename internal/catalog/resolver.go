package catalog

import (
	"context"
	"log/slog"

	"github.com/joao-fontenele/download-delivery/internal/domain"
)

type VariantLookup interface {
	LookupVariant(ctx context.Context, gid string) (*Variant, error)
}

// ResolverMetrics is notified about per-item outcomes. Nil is allowed.
type ResolverMetrics interface {
	AssetResolved(ctx context.Context)
	LookupFailed(ctx context.Context)
}

type Resolver struct {
	lookup  VariantLookup
	metrics ResolverMetrics
	logger  *slog.Logger
}

func NewResolver(lookup VariantLookup, metrics ResolverMetrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		lookup:  lookup,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve maps line items to downloadable assets, one lookup per item, in
// order. Items without a variant id, failed lookups and variants without a
// download link are skipped; none of them stop the remaining items.
func (r *Resolver) Resolve(ctx context.Context, items []domain.LineItem) []domain.DownloadableAsset {
	var assets []domain.DownloadableAsset

	for _, item := range items {
		if item.VariantID.IsZero() {
			continue
		}

		r.logger.Info("checking variant", "variant_id", item.VariantID)

		variant, err := r.lookup.LookupVariant(ctx, VariantGID(string(item.VariantID)))
		if err != nil {
			r.logger.Error("failed to look up variant", "error", err, "variant_id", item.VariantID)
			if r.metrics != nil {
				r.metrics.LookupFailed(ctx)
			}
			continue
		}

		link := variant.DownloadLink()
		if link == "" {
			r.logger.Info("no download link for variant", "variant_id", item.VariantID)
			continue
		}

		asset := domain.DownloadableAsset{
			ProductTitle: variant.Product.Title,
			VariantTitle: variant.Title,
			DownloadLink: link,
		}
		r.logger.Info("found download link", "variant_id", item.VariantID, "product", asset.ProductTitle, "variant", asset.VariantTitle)
		if r.metrics != nil {
			r.metrics.AssetResolved(ctx)
		}
		assets = append(assets, asset)
	}

	return assets
}
