package query

import (
	"fmt"
	"strconv"

	"github.com/scidaf/daf/errors"
)

// Parser builds a Query from a token stream, a single token of lookahead
// recursive-descent parser in the same spirit as the teacher's pql.Parser.
type Parser struct {
	s    *Scanner
	tok  Token
	text string
}

// Parse parses a single query expression (spec.md §4.7).
func Parse(src string) (*Query, error) {
	p := &Parser{s: NewScanner(src)}
	p.next()
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokEOF {
		return nil, p.errorf("unexpected trailing input: %q", p.tok.Text)
	}
	return q, nil
}

func (p *Parser) next() {
	p.tok = p.s.Scan()
	p.text = p.tok.Text
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return errors.New(errors.QueryParseError, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if p.tok.Kind != kind {
		return Token{}, p.errorf("expected %s, found %q", kind, p.text)
	}
	tok := p.tok
	p.next()
	return tok, nil
}

func (p *Parser) expectIdent() (string, error) {
	tok, err := p.expect(TokIdent)
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

func (p *Parser) parseQuery() (*Query, error) {
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	q := &Query{Selector: sel}
	for {
		switch p.tok.Kind {
		case TokLBracket:
			stage, err := p.parseIndexStage()
			if err != nil {
				return nil, err
			}
			q.Stages = append(q.Stages, stage)
		case TokPipe:
			stage, err := p.parseOpStage()
			if err != nil {
				return nil, err
			}
			q.Stages = append(q.Stages, stage)
		default:
			return q, nil
		}
	}
}

func (p *Parser) parseSelector() (Selector, error) {
	head, err := p.expectIdent()
	if err != nil {
		return Selector{}, err
	}
	if _, err := p.expect(TokLParen); err != nil {
		return Selector{}, err
	}

	var sel Selector
	switch head {
	case "scalar":
		name, err := p.expectIdent()
		if err != nil {
			return Selector{}, err
		}
		sel = Selector{Kind: SelectScalar, Name: name}
	case "vec":
		axis, err := p.expectIdent()
		if err != nil {
			return Selector{}, err
		}
		if _, err := p.expect(TokComma); err != nil {
			return Selector{}, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return Selector{}, err
		}
		sel = Selector{Kind: SelectVector, Axis: axis, Name: name}
	case "mat":
		rows, err := p.expectIdent()
		if err != nil {
			return Selector{}, err
		}
		if _, err := p.expect(TokComma); err != nil {
			return Selector{}, err
		}
		cols, err := p.expectIdent()
		if err != nil {
			return Selector{}, err
		}
		if _, err := p.expect(TokComma); err != nil {
			return Selector{}, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return Selector{}, err
		}
		sel = Selector{Kind: SelectMatrix, Rows: rows, Cols: cols, Name: name}
	default:
		return Selector{}, p.errorf("unknown selector: %s (expected scalar, vec, or mat)", head)
	}
	if _, err := p.expect(TokRParen); err != nil {
		return Selector{}, err
	}
	return sel, nil
}

func (p *Parser) parseIndexStage() (Stage, error) {
	if _, err := p.expect(TokLBracket); err != nil {
		return nil, err
	}
	if p.tok.Kind == TokIdent && p.text == "mask" {
		p.next()
		if _, err := p.expect(TokLParen); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		return IndexStage{MaskVector: name}, nil
	}

	var entries []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		entries = append(entries, name)
		if p.tok.Kind == TokComma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(TokRBracket); err != nil {
		return nil, err
	}
	return IndexStage{Entries: entries}, nil
}

func (p *Parser) parseOpStage() (Stage, error) {
	if _, err := p.expect(TokPipe); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stage := OpStage{Op: name}
	if p.tok.Kind != TokLParen {
		return stage, nil
	}
	p.next()
	params := make(map[string]interface{})
	if p.tok.Kind != TokRParen {
		for {
			key, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokEquals); err != nil {
				return nil, err
			}
			val, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			params[key] = val
			if p.tok.Kind == TokComma {
				p.next()
				continue
			}
			break
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	stage.Params = params
	return stage, nil
}

func (p *Parser) parseLiteral() (interface{}, error) {
	switch p.tok.Kind {
	case TokString:
		v := p.text
		p.next()
		return v, nil
	case TokNumber:
		text := p.text
		p.next()
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f, nil
		}
		return nil, p.errorf("invalid number literal: %s", text)
	case TokIdent:
		v := p.text
		p.next()
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return v, nil
		}
	default:
		return nil, p.errorf("expected a literal, found %q", p.text)
	}
}
