// Package dynamic is the compiler bridge for columns whose types are not
// statically known: it resolves each referenced column's type from the
// graph's schema, synthesizes the fully typed equivalent of the static-path
// call as source text, and hands that text to an injected CompileService.
// The opaque handle coming back is cast to the expected node callable.
//
// The service itself is a capability. Deployments without an embedded
// compiler use NoJIT, which preserves the full static path and rejects
// dynamic attachments with an UnsupportedError.
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/colgraph/colgraph/internal/graph"
)

// CompileService builds and runs one source-text fragment, returning an
// opaque handle to whatever the fragment evaluates to. It must be free of
// side effects beyond producing the handle.
type CompileService interface {
	CompileAndInvoke(ctx context.Context, src string) (any, error)
}

// NoJIT is the CompileService for builds without an embedded compiler.
type NoJIT struct{}

func (NoJIT) CompileAndInvoke(ctx context.Context, src string) (any, error) {
	return nil, &graph.UnsupportedError{Op: "expression compilation"}
}

// CompiledDerive is the handle shape a service returns for a derive
// expression when it also knows the result type. A bare graph.DeriveFunc is
// accepted too; the derived column's type is then unknown downstream.
type CompiledDerive struct {
	Fn     graph.DeriveFunc
	Result reflect.Type
}

// Builder attaches dynamically compiled nodes to a graph.
type Builder struct {
	svc CompileService
}

func NewBuilder(svc CompileService) *Builder { return &Builder{svc: svc} }

// Filter compiles expr into a predicate over columns and attaches it below
// at. Unlike the static path, the column list must be explicit: the arity
// cannot be read off an expression without parsing it.
func (b *Builder) Filter(ctx context.Context, at graph.Node, name, expr string, columns []string) (graph.FilterHandle, error) {
	src, err := b.synthesize(at, columns, "bool", expr)
	if err != nil {
		return graph.FilterHandle{}, err
	}
	h, err := b.invoke(ctx, src)
	if err != nil {
		return graph.FilterHandle{}, err
	}
	fn, ok := h.(graph.FilterFunc)
	if !ok {
		return graph.FilterHandle{}, &graph.CompileError{
			Source: src,
			Err:    fmt.Errorf("service returned %T, want graph.FilterFunc", h),
		}
	}
	return at.Filter(name, columns, fn)
}

// Derive compiles expr into a derived-column body and attaches it below at.
func (b *Builder) Derive(ctx context.Context, at graph.Node, column, expr string, columns []string) (graph.DeriveHandle, error) {
	src, err := b.synthesize(at, columns, "any", expr)
	if err != nil {
		return graph.DeriveHandle{}, err
	}
	h, err := b.invoke(ctx, src)
	if err != nil {
		return graph.DeriveHandle{}, err
	}
	switch fn := h.(type) {
	case CompiledDerive:
		return at.DeriveTyped(column, columns, fn.Fn, fn.Result)
	case graph.DeriveFunc:
		return at.Derive(column, columns, fn)
	default:
		return graph.DeriveHandle{}, &graph.CompileError{
			Source: src,
			Err:    fmt.Errorf("service returned %T, want graph.DeriveFunc or dynamic.CompiledDerive", h),
		}
	}
}

// synthesize resolves the type of every referenced column and renders the
// typed function source the service is asked to build.
func (b *Builder) synthesize(at graph.Node, columns []string, ret, expr string) (string, error) {
	g, err := at.Owner()
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", &graph.ConfigError{Msg: "dynamic expressions need an explicit column list"}
	}
	if strings.TrimSpace(expr) == "" {
		return "", &graph.ConfigError{Msg: "dynamic expression is empty"}
	}
	params := make([]string, len(columns))
	for i, name := range columns {
		t, err := g.ColumnType(name)
		if err != nil {
			return "", err
		}
		params[i] = name + " " + t.String()
	}
	return fmt.Sprintf("func(%s) %s { return %s }", strings.Join(params, ", "), ret, expr), nil
}

func (b *Builder) invoke(ctx context.Context, src string) (any, error) {
	h, err := b.svc.CompileAndInvoke(ctx, src)
	if err != nil {
		var ce *graph.CompileError
		var ue *graph.UnsupportedError
		if errors.As(err, &ce) || errors.As(err, &ue) {
			return nil, err
		}
		return nil, &graph.CompileError{Source: src, Err: err}
	}
	return h, nil
}
