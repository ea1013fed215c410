package parser

import (
	"fmt"
	"strconv"

	"github.com/meridiandb/meridian/internal/ddl"
	"github.com/meridiandb/meridian/pkg/types"
)

// ParseError represents a parsing error with location information.
type ParseError struct {
	Message  string
	Position int
	Token    Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s (got %s)", e.Position, e.Message, e.Token.Literal)
}

// Statement is a parsed DDL statement.
type Statement interface {
	statementNode()
}

// CreateTableStatement wraps a raw table definition awaiting analysis.
type CreateTableStatement struct {
	Def *ddl.TableDef
}

func (s *CreateTableStatement) statementNode() {}

// DropTableStatement removes a table from the catalog.
type DropTableStatement struct {
	Name     string
	IfExists bool
}

func (s *DropTableStatement) statementNode() {}

// ShowCreateTableStatement requests the canonical DDL of a table.
type ShowCreateTableStatement struct {
	Name string
}

func (s *ShowCreateTableStatement) statementNode() {}

// Parser parses DDL statements into raw definitions.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
}

// NewParser creates a new Parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a single DDL statement.
func Parse(input string) (Statement, error) {
	p := NewParser(input)
	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(TokenSemicolon) {
		p.nextToken()
	}
	if !p.curTokenIs(TokenEOF) {
		return nil, p.errorf("unexpected trailing input")
	}
	return stmt, nil
}

// ParseAll parses a script of semicolon-separated DDL statements.
func ParseAll(input string) ([]Statement, error) {
	p := NewParser(input)
	var stmts []Statement
	for !p.curTokenIs(TokenEOF) {
		if p.curTokenIs(TokenSemicolon) {
			p.nextToken()
			continue
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// expect consumes the current token if it matches, otherwise errors.
func (p *Parser) expect(t TokenType) (Token, error) {
	if !p.curTokenIs(t) {
		return Token{}, p.errorf("expected %s", t.String())
	}
	tok := p.curToken
	p.nextToken()
	return tok, nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Position: p.curToken.Pos,
		Token:    p.curToken,
	}
}

// ParseStatement parses one DDL statement, leaving the cursor on the token
// after the statement body.
func (p *Parser) ParseStatement() (Statement, error) {
	switch p.curToken.Type {
	case TokenCreate:
		return p.parseCreateTable()
	case TokenDrop:
		return p.parseDropTable()
	case TokenShow:
		return p.parseShowCreateTable()
	default:
		return nil, p.errorf("expected CREATE, DROP, or SHOW")
	}
}

// parseCreateTable parses:
//
//	CREATE TABLE [IF NOT EXISTS] name ( col_def [, col_def ...] )
//	  [ENGINE = ident]
//	  [AGGREGATE|UNIQUE|DUPLICATE KEY ( name [, name ...] )]
//	  [COMMENT "..."]
func (p *Parser) parseCreateTable() (*CreateTableStatement, error) {
	def := &ddl.TableDef{}

	p.nextToken() // skip CREATE
	if _, err := p.expect(TokenTable); err != nil {
		return nil, err
	}

	if p.curTokenIs(TokenIf) {
		p.nextToken()
		if _, err := p.expect(TokenNot); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenExists); err != nil {
			return nil, err
		}
		def.IfNotExists = true
	}

	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	def.Name = name.Literal

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		def.Columns = append(def.Columns, col)

		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	// Trailing clauses in any order.
	for {
		switch p.curToken.Type {
		case TokenEngine:
			p.nextToken()
			if _, err := p.expect(TokenEq); err != nil {
				return nil, err
			}
			engine, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			def.Engine = engine.Literal

		case TokenAggregate, TokenUnique, TokenDuplicate:
			keyTok := p.curToken
			p.nextToken()
			if _, err := p.expect(TokenKey); err != nil {
				return nil, err
			}
			cols, err := p.parseNameList()
			if err != nil {
				return nil, err
			}
			switch keyTok.Type {
			case TokenAggregate:
				def.KeyType = types.KeyAggregate
			case TokenUnique:
				def.KeyType = types.KeyUnique
			case TokenDuplicate:
				def.KeyType = types.KeyDuplicate
			}
			def.KeyColumns = cols

		case TokenComment:
			p.nextToken()
			comment, err := p.expect(TokenString)
			if err != nil {
				return nil, err
			}
			def.Comment = comment.Literal

		default:
			return &CreateTableStatement{Def: def}, nil
		}
	}
}

// parseColumnDef parses one column clause:
//
//	name type [KEY] [agg] [NULL | NOT NULL] [DEFAULT "v" | DEFAULT NULL] [COMMENT "..."]
func (p *Parser) parseColumnDef() (*ddl.ColumnDef, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}

	colType, err := p.parseType()
	if err != nil {
		return nil, err
	}

	col := ddl.NewColumnDef(name.Literal, colType)

	for {
		switch p.curToken.Type {
		case TokenKey:
			col.IsKey = true
			p.nextToken()

		case TokenIdent:
			agg := types.ParseAggregateType(p.curToken.Literal)
			if agg == types.AggNone {
				return nil, p.errorf("unknown aggregate function %q", p.curToken.Literal)
			}
			col.Agg = agg
			p.nextToken()

		case TokenNot:
			p.nextToken()
			if _, err := p.expect(TokenNull); err != nil {
				return nil, err
			}
			col.Nullable = false

		case TokenNull:
			col.Nullable = true
			p.nextToken()

		case TokenDefault:
			p.nextToken()
			switch p.curToken.Type {
			case TokenNull:
				col.Default = types.NullDefault()
				p.nextToken()
			case TokenString:
				col.Default = types.ValueDefault(p.curToken.Literal)
				p.nextToken()
			default:
				return nil, p.errorf("expected quoted default value or NULL")
			}

		case TokenComment:
			p.nextToken()
			comment, err := p.expect(TokenString)
			if err != nil {
				return nil, err
			}
			col.Comment = comment.Literal

		default:
			return col, nil
		}
	}
}

// parseType parses a type name with optional length or precision/scale
// parameters. Unknown type names are rejected here; parameter range checks
// belong to type resolution during analysis.
func (p *Parser) parseType() (*types.ScalarType, error) {
	tok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}

	prim := types.ParsePrimitiveType(tok.Literal)
	if prim == types.InvalidType {
		return nil, p.errorf("unknown type %q", tok.Literal)
	}

	t := types.NewScalarType(prim)
	if !p.curTokenIs(TokenLParen) {
		return t, nil
	}

	p.nextToken()
	first, err := p.parseIntParam()
	if err != nil {
		return nil, err
	}

	if p.curTokenIs(TokenComma) {
		p.nextToken()
		second, err := p.parseIntParam()
		if err != nil {
			return nil, err
		}
		t.Precision = first
		t.Scale = second
	} else if prim.IsDecimalType() {
		t.Precision = first
	} else {
		t.Len = first
		t.LenAssigned = true
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return t, nil
}

// parseIntParam parses a non-negative integer type parameter.
func (p *Parser) parseIntParam() (int, error) {
	tok, err := p.expect(TokenNumber)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok.Literal)
	if err != nil {
		return 0, p.errorf("invalid type parameter %q", tok.Literal)
	}
	return n, nil
}

// parseNameList parses ( name [, name ...] ).
func (p *Parser) parseNameList() ([]string, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		names = append(names, name.Literal)

		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return names, nil
}

// parseDropTable parses DROP TABLE [IF EXISTS] name.
func (p *Parser) parseDropTable() (*DropTableStatement, error) {
	p.nextToken() // skip DROP
	if _, err := p.expect(TokenTable); err != nil {
		return nil, err
	}

	stmt := &DropTableStatement{}
	if p.curTokenIs(TokenIf) {
		p.nextToken()
		if _, err := p.expect(TokenExists); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}

	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	stmt.Name = name.Literal
	if p.curTokenIs(TokenSemicolon) {
		p.nextToken()
	}
	return stmt, nil
}

// parseShowCreateTable parses SHOW CREATE TABLE name.
func (p *Parser) parseShowCreateTable() (*ShowCreateTableStatement, error) {
	p.nextToken() // skip SHOW
	if _, err := p.expect(TokenCreate); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenTable); err != nil {
		return nil, err
	}

	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(TokenSemicolon) {
		p.nextToken()
	}
	return &ShowCreateTableStatement{Name: name.Literal}, nil
}
