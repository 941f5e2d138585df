// Package metrics holds the Prometheus collectors shared by the API and the web UI.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Views of the catalog, by surface ("items" or "gallery").
var Views = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stvari_views_total",
	Help: "Catalog views built, by view.",
}, []string{"view"})

// FacetPanels counts facet panels that had to be computed.
var FacetPanels = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stvari_facet_panels_total",
	Help: "Facet panels computed.",
})

// FacetCacheHits counts facet panels served from the cache.
var FacetCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stvari_facet_cache_hits_total",
	Help: "Facet panels served from the cache.",
})

// PhotoUploads counts photo uploads, by result ("ok" or "rejected").
var PhotoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stvari_photo_uploads_total",
	Help: "Photo uploads, by result.",
}, []string{"result"})
