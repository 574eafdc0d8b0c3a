package web

import (
	"context"

	"FinMerge/internal/domain/failure"
	"FinMerge/internal/service/ratelimit"
	xhttp "FinMerge/pkg/http"
)

// Fetcher downloads pages through a browser-like client, pacing requests per host.
type Fetcher struct {
	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

// New expects hc to carry the browser headers and user agent pool.
func New(hc *xhttp.Client, lim *ratelimit.Limiter) *Fetcher {
	return &Fetcher{http: hc, limiter: lim}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, ratelimit.HostKey(url)); err != nil {
			return nil, failure.Network("fetch "+url, err)
		}
	}

	body, err := f.http.Get(ctx, &xhttp.RequestOptions{URL: url})
	if err != nil {
		return nil, failure.Wrap("fetch "+url, err)
	}
	return body, nil
}
