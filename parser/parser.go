package parser

import (
	"fmt"
	"strconv"

	"github.com/pyc-lang/pyc/ast"
	"github.com/pyc-lang/pyc/lexer"
	"github.com/pyc-lang/pyc/token"
	"github.com/pyc-lang/pyc/types"
)

const (
	_ int = iota
	LOWEST
	OR          // or
	AND         // and
	NOT         // not X
	EQUALS      // == or !=
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X
	INDEX       // X[a:b]
)

var precedences = map[token.TokenType]int{
	token.OR:     OR,
	token.AND:    AND,
	token.EQL:    EQUALS,
	token.NEQ:    EQUALS,
	token.LSS:    LESSGREATER,
	token.LEQ:    LESSGREATER,
	token.GTR:    LESSGREATER,
	token.GEQ:    LESSGREATER,
	token.ADD:    SUM,
	token.SUB:    SUM,
	token.MUL:    PRODUCT,
	token.QUO:    PRODUCT,
	token.INTQUO: PRODUCT,
	token.REM:    PRODUCT,
	token.LBRACK: INDEX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []*token.CompileError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	// returns collects the return statements of the function body being
	// parsed; nil outside any function.
	returns *[]*ast.ReturnStatement
	depth   int // block nesting
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*token.CompileError{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.SUB, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACK, p.parseListLiteral)
	for _, t := range []token.TokenType{token.INT_T, token.BOOL_T, token.STR_T, token.LIST_T} {
		p.registerPrefix(t, p.parseIndexExpression)
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for t := range precedences {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(token.LBRACK, p.parseSliceExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) Errors() []*token.CompileError {
	return p.errors
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, &token.CompileError{
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
	})
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(p.peekToken, "expected next token to be %s, got %s instead", t, describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorf(tok, "no prefix parse function for %s found", describe(tok))
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.IDENT, token.INT, token.ILLEGAL:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	}
	return tok.Type.String()
}

// synchronize skips to the end of the broken statement so one syntax error
// does not cascade through the rest of the unit.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.SEMI) && !p.curTokenIs(token.RBRACE) {
		p.nextToken()
	}
}

// ParseProgram parses a whole unit. The returned program is only
// meaningful when Errors() is empty.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		prevLen := len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > prevLen {
			p.synchronize()
		} else if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SEMI:
		return nil
	case token.DEF:
		return p.parseFuncDecl()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IDENT:
		if p.peekTokenIs(token.COLON) {
			return p.parseDeclStatement()
		}
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssignStatement()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) checkName(tok token.Token) bool {
	if types.IsReservedName(tok.Literal) {
		p.errorf(tok, "identifier %q is reserved", tok.Literal)
		return false
	}
	return true
}

func (p *Parser) expectSemi() bool {
	return p.expectPeek(token.SEMI)
}

func (p *Parser) parseDeclStatement() ast.Statement {
	stmt := &ast.DeclStatement{Token: p.curToken, Name: p.curToken.Literal}
	if !p.checkName(p.curToken) {
		return nil
	}
	p.nextToken() // :
	p.nextToken()
	stmt.Type = p.parseTypeRef()
	if stmt.Type == nil || !p.expectSemi() {
		return nil
	}
	return stmt
}

func (p *Parser) parseAssignStatement() ast.Statement {
	stmt := &ast.AssignStatement{Token: p.curToken, Name: p.curToken.Literal}
	p.nextToken() // =
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil || !p.expectSemi() {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil || !p.expectSemi() {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.returns == nil {
		p.errorf(p.curToken, "return outside of a function")
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil || !p.expectSemi() {
		return nil
	}
	*p.returns = append(*p.returns, stmt)
	return stmt
}

func (p *Parser) parseFuncDecl() ast.Statement {
	fd := &ast.FuncDecl{Token: p.curToken}
	if p.depth > 0 {
		p.errorf(p.curToken, "function declarations are only allowed at the top level")
		return nil
	}
	if !p.expectPeek(token.IDENT) || !p.checkName(p.curToken) {
		return nil
	}
	fd.Name = p.curToken.Literal
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fd.Params = p.parseParams()
	if fd.Params == nil || !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	fd.RetType = p.parseTypeRef()
	if fd.RetType == nil {
		return nil
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	returns := []*ast.ReturnStatement{}
	p.returns = &returns
	fd.Body = p.parseBlock()
	p.returns = nil
	if fd.Body == nil {
		return nil
	}
	fd.Returns = returns
	return fd
}

// parseParams parses "(a: int, b: str)" with curToken on "(" and leaves
// curToken on ")". It returns nil on error.
func (p *Parser) parseParams() []*ast.Param {
	params := []*ast.Param{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	for {
		if !p.expectPeek(token.IDENT) || !p.checkName(p.curToken) {
			return nil
		}
		param := &ast.Param{Token: p.curToken, Name: p.curToken.Literal}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		if param.Type = p.parseTypeRef(); param.Type == nil {
			return nil
		}
		params = append(params, param)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseTypeRef() *ast.TypeRef {
	if !p.curToken.IsTypeName() {
		p.errorf(p.curToken, "expected a type, got %s instead", describe(p.curToken))
		return nil
	}
	kind, _ := types.FromName(p.curToken.Literal)
	return &ast.TypeRef{Token: p.curToken, Kind: kind}
}

// parseBlock parses "{ stmts }" with curToken on "{" and leaves curToken
// on "}".
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken, Statements: []ast.Statement{}}
	p.depth++
	defer func() { p.depth-- }()
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(p.curToken, "unterminated block opened at %d:%d", block.Token.Line, block.Token.Column)
			return nil
		}
		prevLen := len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > prevLen {
			return nil
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseCondBody() (ast.Expression, *ast.Block) {
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil || !p.expectPeek(token.COLON) || !p.expectPeek(token.LBRACE) {
		return nil, nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil, nil
	}
	return cond, body
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}
	stmt.Condition, stmt.Body = p.parseCondBody()
	if stmt.Body == nil {
		return nil
	}
	var ok bool
	if stmt.Else, ok = p.parseBranch(); !ok {
		return nil
	}
	return stmt
}

// parseBranch parses an optional elif/else tail following a closed block.
func (p *Parser) parseBranch() (ast.Branch, bool) {
	switch {
	case p.peekTokenIs(token.ELIF):
		p.nextToken()
		eb := &ast.ElifBlock{Token: p.curToken}
		eb.Condition, eb.Body = p.parseCondBody()
		if eb.Body == nil {
			return nil, false
		}
		var ok bool
		if eb.Else, ok = p.parseBranch(); !ok {
			return nil, false
		}
		return eb, true
	case p.peekTokenIs(token.ELSE):
		p.nextToken()
		eb := &ast.ElseBlock{Token: p.curToken}
		if !p.expectPeek(token.COLON) || !p.expectPeek(token.LBRACE) {
			return nil, false
		}
		if eb.Body = p.parseBlock(); eb.Body == nil {
			return nil, false
		}
		return eb, true
	}
	return nil, true
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	stmt.Condition, stmt.Body = p.parseCondBody()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	if p.peekTokenIs(token.LPAREN) {
		return p.parseCallExpression()
	}
	return &ast.Constant{Token: p.curToken, Type: types.ID, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	if _, err := strconv.ParseInt(p.curToken.Literal, 10, 32); err != nil {
		p.errorf(p.curToken, "integer literal %s is out of range", p.curToken.Literal)
		return nil
	}
	return &ast.Constant{Token: p.curToken, Type: types.Int, Value: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.Constant{Token: p.curToken, Type: types.Str, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.Constant{Token: p.curToken, Type: types.Bool, Value: p.curToken.Literal}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	precedence := PREFIX
	if p.curTokenIs(token.NOT) {
		precedence = NOT
	}

	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

// parseExpList parses a comma separated list ending at end, with curToken
// on the opening delimiter. It leaves curToken on end.
func (p *Parser) parseExpList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	for {
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil, false
		}
		list = append(list, exp)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseCallExpression() ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Function: p.curToken.Literal}
	p.nextToken() // (
	args, ok := p.parseExpList(token.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	return call
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	elems, ok := p.parseExpList(token.RBRACK)
	if !ok {
		return nil
	}
	list.Elements = elems
	return list
}

// parseIndexExpression parses type(container[index]).
func (p *Parser) parseIndexExpression() ast.Expression {
	ie := &ast.IndexExpression{Token: p.curToken}
	if ie.Elem = p.parseTypeRef(); ie.Elem == nil {
		return nil
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	if ie.Left = p.parseExpression(INDEX); ie.Left == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACK) {
		return nil
	}
	p.nextToken()
	if ie.Index = p.parseExpression(LOWEST); ie.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACK) || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return ie
}

// parseSliceExpression parses left[start:end:step]; every bound is
// optional and absent ones get their defaults here.
func (p *Parser) parseSliceExpression(left ast.Expression) ast.Expression {
	se := &ast.SliceExpression{Token: p.curToken, Left: left}

	var bounds [3]ast.Expression
	colons := 0
	for i := 0; i < 3; i++ {
		if !p.peekTokenIs(token.COLON) && !p.peekTokenIs(token.RBRACK) {
			p.nextToken()
			if bounds[i] = p.parseExpression(LOWEST); bounds[i] == nil {
				return nil
			}
		}
		if i == 2 || !p.peekTokenIs(token.COLON) {
			break
		}
		p.nextToken()
		colons++
	}
	if colons == 0 {
		p.errorf(se.Token, "expected ':' in slice; index with type(expr[index]) instead")
		return nil
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}

	se.Start = p.boundOr(bounds[0], ast.SliceDefaultStart)
	se.End = p.boundOr(bounds[1], ast.SliceDefaultEnd)
	se.Step = p.boundOr(bounds[2], ast.SliceDefaultStep)
	return se
}

func (p *Parser) boundOr(bound ast.Expression, def int) ast.Expression {
	if bound != nil {
		return bound
	}
	tok := p.curToken
	tok.Type = token.INT
	tok.Literal = strconv.Itoa(def)
	return &ast.Constant{Token: tok, Type: types.Int, Value: tok.Literal}
}
