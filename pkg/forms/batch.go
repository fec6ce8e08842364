package forms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

// maxConcurrentRenders bounds the renders of one batch.
const maxConcurrentRenders = 4

// Renderer renders one request. *formengine.Engine implements it.
type Renderer interface {
	Render(ctx context.Context, req formengine.RenderRequest) (*formengine.RenderResult, error)
}

// Inputs carries the contexts of a batch render.
type Inputs struct {
	// Shared is merged under every form's own context.
	Shared formengine.Context
	Forms  map[workflow.FormID]formengine.Context
	RequestOptions
}

func (in Inputs) contextFor(id workflow.FormID) formengine.Context {
	return in.Shared.Merge(in.Forms[id])
}

// FormResult pairs a form with its render result.
type FormResult struct {
	Form   workflow.FormID          `json:"form"`
	Result *formengine.RenderResult `json:"result"`
}

// RenderRequired renders, with the default registry, every form res reports
// missing.
func RenderRequired(ctx context.Context, r Renderer, res workflow.Result, in Inputs) ([]FormResult, error) {
	return Default().RenderRequired(ctx, r, res, in)
}

// RenderRequired renders every form res reports missing. All inputs are
// prepared first; if any fails validation nothing is rendered and the
// validation errors are returned joined. Renders run concurrently and the
// results keep the order of res.Missing.
func (reg *Registry) RenderRequired(ctx context.Context, r Renderer, res workflow.Result, in Inputs) ([]FormResult, error) {
	if len(res.Missing) == 0 {
		return nil, nil
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	reqs := make([]formengine.RenderRequest, len(res.Missing))
	var errs []error
	for i, id := range res.Missing {
		req, err := reg.Request(id, in.contextFor(id), in.RequestOptions)
		if err != nil {
			errs = append(errs, fmt.Errorf("form %s: %w", id, err))
			continue
		}
		reqs[i] = req
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	out := make([]FormResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRenders)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			result, err := r.Render(gctx, req)
			if err != nil {
				return fmt.Errorf("form %s: %w", res.Missing[i], err)
			}
			out[i] = FormResult{Form: res.Missing[i], Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
