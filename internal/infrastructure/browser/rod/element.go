package rod

import (
	"context"
	"fmt"

	"form-applier/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.ElementPort = (*Element)(nil)

type Element struct {
	el  *rod.Element
	cfg Config
}

func (e *Element) scoped(ctx context.Context) *rod.Element {
	el := e.el.Context(ctx)
	if e.cfg.Timeout > 0 {
		el = el.Timeout(e.cfg.Timeout)
	}
	return el
}

func (e *Element) Query(ctx context.Context, selector string) (output.ElementPort, bool, error) {
	found, el, err := e.scoped(ctx).Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", selector, err)
	}
	if !found {
		return nil, false, nil
	}
	return &Element{el: el, cfg: e.cfg}, true, nil
}

func (e *Element) QueryAll(ctx context.Context, selector string) ([]output.ElementPort, error) {
	els, err := e.scoped(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query all %s: %w", selector, err)
	}
	out := make([]output.ElementPort, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{el: el, cfg: e.cfg})
	}
	return out, nil
}

func (e *Element) Eval(ctx context.Context, js string, out any) error {
	res, err := e.scoped(ctx).Eval(js)
	if err != nil {
		return fmt.Errorf("eval failed: %w", err)
	}
	if out == nil || res == nil {
		return nil
	}
	if err := res.Value.Unmarshal(out); err != nil {
		return fmt.Errorf("decode eval result: %w", err)
	}
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := e.scoped(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Fill replaces the current value of an input or textarea with text.
func (e *Element) Fill(ctx context.Context, text string) error {
	el := e.scoped(ctx)
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.scoped(ctx).Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return text, nil
}
