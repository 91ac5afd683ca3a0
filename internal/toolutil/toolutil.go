// Package toolutil runs a digest request and shapes the result for a transport.
// The HTTP API, the MCP tool and the CLI all go through Execute.
package toolutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
)

// Runner produces a digest. *video.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req engine.Request) (*engine.DigestOutput, error)
}

// Result is a transport-neutral response: Body is either an
// engine.SuccessResponse or an engine.ErrorResponse.
type Result struct {
	Status int
	Body   any
	Output *engine.DigestOutput // nil on failure
	Err    error
}

// Execute runs req and maps the outcome to a status code and response body.
func Execute(ctx context.Context, r Runner, req engine.Request) Result {
	out, err := r.Run(ctx, req)
	if err != nil {
		status, body := ErrorBody(err)
		return Result{Status: status, Body: body, Err: err}
	}
	body, err := SuccessBody(out)
	if err != nil {
		status, eb := ErrorBody(err)
		return Result{Status: status, Body: eb, Err: err}
	}
	return Result{Status: http.StatusOK, Body: body, Output: out}
}

// SuccessBody renders the document as indented JSON with a short summary.
func SuccessBody(out *engine.DigestOutput) (engine.SuccessResponse, error) {
	if out == nil {
		return engine.SuccessResponse{}, errors.New("empty digest")
	}
	content, err := MarshalDocument(out.Document)
	if err != nil {
		return engine.SuccessResponse{}, err
	}
	doc := out.Document
	return engine.SuccessResponse{
		Filename: out.Filename,
		Content:  string(content),
		Metadata: engine.ResponseMetadata{
			VideoID:         doc.VideoID,
			Title:           doc.Title,
			ChannelName:     doc.ChannelName,
			TranscriptLines: len(doc.Transcript),
			CommentCount:    len(doc.Comments),
		},
	}, nil
}

// MarshalDocument encodes a document the way it is written to disk.
func MarshalDocument(doc engine.ResultDocument) ([]byte, error) {
	if doc.Comments == nil {
		doc.Comments = []engine.Comment{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// ErrorBody classifies err into a status code and a fixed-vocabulary body.
func ErrorBody(err error) (int, engine.ErrorResponse) {
	c := engine.Classify(err)
	return c.Status, engine.ErrorResponse{Error: c.Message, Retryable: c.Retryable}
}
