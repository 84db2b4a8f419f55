// Copyright 2024 Soradb, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context carries the ambient state of one optimizer invocation: a standard
// context, a logger entry, and a tracer. One Context is owned by exactly one
// invocation; nothing here is safe for concurrent mutation.
type Context struct {
	context.Context
	logger *logrus.Entry
	tracer opentracing.Tracer
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger sets the logger entry used by the optimizer and its tasks.
func WithLogger(logger *logrus.Entry) ContextOption {
	return func(ctx *Context) {
		ctx.logger = logger
	}
}

// WithTracer sets the tracer used to report optimization spans.
func WithTracer(tracer opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = tracer
	}
}

// NewContext creates a Context from a parent context.Context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{Context: ctx}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if c.tracer == nil {
		c.tracer = opentracing.NoopTracer{}
	}
	return c
}

// NewEmptyContext returns a default Context, used mostly in tests.
func NewEmptyContext() *Context {
	return NewContext(context.Background())
}

// Logger returns the context's logger entry.
func (ctx *Context) Logger() *logrus.Entry {
	return ctx.logger
}

// Span starts a tracing span and returns it along with a child Context
// whose inner context carries the span.
func (ctx *Context) Span(opName string, opts ...opentracing.StartSpanOption) (opentracing.Span, *Context) {
	if parent := opentracing.SpanFromContext(ctx.Context); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := ctx.tracer.StartSpan(opName, opts...)

	child := *ctx
	child.Context = opentracing.ContextWithSpan(ctx.Context, span)
	return span, &child
}
