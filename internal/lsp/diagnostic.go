package lsp

import (
	"errors"

	"github.com/leapstack-labs/leapc/pkg/core"
	"github.com/leapstack-labs/leapc/pkg/interp"
	"github.com/leapstack-labs/leapc/pkg/parser"
)

const diagnosticSource = "leapc"

// analysis is the outcome of running a document through the pipeline.
type analysis struct {
	AST         *core.AST // nil when parsing failed
	Env         *interp.Env
	Diagnostics []core.Diagnostic
}

// analyze lexes, parses and interprets the document against the server's
// capability table. A parse error becomes a diagnostic like any other.
func (s *Server) analyze(doc *Document) *analysis {
	logger := s.logger.With("uri", doc.URI)
	res, err := parser.ParseSource(doc.Content, parser.WithLogger(logger))

	a := &analysis{}
	for _, le := range res.LexErrors {
		a.Diagnostics = append(a.Diagnostics, le.Diagnostic())
	}

	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			a.Diagnostics = append(a.Diagnostics, pe.Diagnostic())
		}
		return a
	}

	a.AST = res.AST
	out := interp.New(s.table, interp.WithLogger(logger)).Run(res.AST)
	a.Env = out.Env
	a.Diagnostics = append(a.Diagnostics, out.Diagnostics...)
	return a
}

// publishDiagnostics analyzes the document and publishes its diagnostics.
func (s *Server) publishDiagnostics(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	a := s.analyze(doc)
	idx := buildIndex(doc.Content, s.table)
	diagnostics := make([]Diagnostic, 0, len(a.Diagnostics))
	for _, d := range a.Diagnostics {
		diagnostics = append(diagnostics, toLSPDiagnostic(doc, idx, d))
	}

	s.logger.Debug("publishing diagnostics", "uri", uri, "count", len(diagnostics))
	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Version:     &version,
		Diagnostics: diagnostics,
	})
}

// clearDiagnostics removes every diagnostic for uri on the client.
func (s *Server) clearDiagnostics(uri string) {
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	})
}

func toLSPDiagnostic(doc *Document, idx *documentIndex, d core.Diagnostic) Diagnostic {
	return Diagnostic{
		Range:    diagnosticRange(doc, idx, d),
		Severity: toLSPSeverity(d.Severity),
		Code:     d.Kind.String(),
		Source:   diagnosticSource + "/" + string(d.Phase),
		Message:  d.Message,
	}
}

// diagnosticRange underlines the header path for unknown includes and the
// token at the diagnostic position otherwise.
func diagnosticRange(doc *Document, idx *documentIndex, d core.Diagnostic) Range {
	if d.Kind == core.KindUnknownHeader {
		for _, inc := range idx.includes {
			if inc.Hash.Offset == d.Pos.Offset {
				return Range{
					Start: doc.OffsetToPosition(inc.PathStart),
					End:   doc.OffsetToPosition(inc.PathEnd),
				}
			}
		}
	}
	return doc.TokenRange(d.Pos)
}

func toLSPSeverity(s core.Severity) DiagnosticSeverity {
	switch s {
	case core.SeverityError:
		return DiagnosticSeverityError
	case core.SeverityWarning:
		return DiagnosticSeverityWarning
	case core.SeverityInfo:
		return DiagnosticSeverityInformation
	default:
		return DiagnosticSeverityHint
	}
}
