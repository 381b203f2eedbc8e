package parser

import (
	"github.com/Lattyware/montyweightjava/pkg/ast"
)

// CompilationUnit parses `import`* `classDecl`+.
func (p *Parser) CompilationUnit() (*ast.CompilationUnit, error) {
	start := p.peek()
	var imports []*ast.ImportDeclaration
	for p.check("import") {
		imp, err := p.importDeclaration()
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	var classes []*ast.ClassDeclaration
	for p.peek().Kind != TokenEOF {
		cls, err := p.classDeclaration()
		if err != nil {
			return nil, err
		}
		classes = append(classes, cls)
	}
	if len(classes) == 0 {
		return nil, p.errorf("class declaration")
	}
	unit := ast.NewCompilationUnit(imports, classes)
	p.finish(unit, start)
	return unit, nil
}

func (p *Parser) importDeclaration() (*ast.ImportDeclaration, error) {
	start := p.advance()
	var path []string
	wildcard := false
	for {
		if len(path) > 0 && p.check("*") {
			p.advance()
			wildcard = true
			break
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		path = append(path, name.Lexeme)
		if !p.match(".") {
			break
		}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	imp := ast.NewImportDeclaration(path, wildcard)
	p.finish(imp, start)
	return imp, nil
}

func (p *Parser) modifiers() ast.Modifiers {
	var mods ast.Modifiers
	for {
		tok := p.peek()
		switch {
		case tok.Is("static"):
			mods.Static = true
		case tok.Is("final"):
			mods.Final = true
		case tok.Is("public"), tok.Is("private"), tok.Is("protected"):
			mods.Access = tok.Lexeme
		default:
			return mods
		}
		p.advance()
	}
}

// classHeader parses everything up to the opening brace of a class body.
func (p *Parser) classHeader() (*ast.ClassDeclaration, error) {
	mods := p.modifiers()
	if _, err := p.expect("class"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	typeParams, err := p.typeParams()
	if err != nil {
		return nil, err
	}
	var super *ast.TypeRef
	if p.match("extends") {
		if super, err = p.typeRef(); err != nil {
			return nil, err
		}
	}
	cls := ast.NewClassDeclaration(name.Lexeme, typeParams, super)
	cls.Modifiers = mods
	return cls, nil
}

func (p *Parser) classDeclaration() (*ast.ClassDeclaration, error) {
	start := p.peek()
	cls, err := p.classHeader()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	outer := p.className
	p.className = cls.Name
	defer func() { p.className = outer }()
	for !p.check("}") {
		if p.peek().Kind == TokenEOF {
			return nil, p.errorf(`"}"`)
		}
		member, err := p.member(cls.Super != nil, true)
		if err != nil {
			return nil, err
		}
		switch m := member.(type) {
		case *ast.FieldDeclaration:
			cls.Fields = append(cls.Fields, m)
		case *ast.ConstructorDeclaration:
			cls.Constructors = append(cls.Constructors, m)
		case *ast.MethodDeclaration:
			cls.Methods = append(cls.Methods, m)
		}
	}
	p.advance()
	p.finish(cls, start)
	tracer().Debugf("class %s: %d fields, %d constructors, %d methods", cls.Name, len(cls.Fields), len(cls.Constructors), len(cls.Methods))
	return cls, nil
}

// member parses a field, constructor, or method. When withBody is false only
// the signature is read (native bridge declarations).
func (p *Parser) member(hasSuper, withBody bool) (ast.Node, error) {
	start := p.peek()
	mods := p.modifiers()
	typeParams, err := p.typeParams()
	if err != nil {
		return nil, err
	}
	if len(typeParams) == 0 && p.peek().Kind == TokenIdentifier && p.peek().Lexeme == p.className && p.peekAt(p.pos+1).Is("(") {
		return p.constructor(start, mods, hasSuper, withBody)
	}
	var returnType *ast.TypeRef
	isVoid := p.match("void")
	if !isVoid {
		if returnType, err = p.typeRef(); err != nil {
			return nil, err
		}
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if !p.check("(") {
		if isVoid || len(typeParams) > 0 {
			return nil, p.errorf(`"("`)
		}
		if withBody {
			if _, err := p.expect(";"); err != nil {
				return nil, err
			}
		}
		field := ast.NewFieldDeclaration(mods, returnType, name.Lexeme)
		p.finish(field, start)
		return field, nil
	}
	params, err := p.parameters()
	if err != nil {
		return nil, err
	}
	var body *ast.Block
	if withBody {
		if body, err = p.block(); err != nil {
			return nil, err
		}
	}
	method := ast.NewMethodDeclaration(mods, typeParams, returnType, name.Lexeme, params, body)
	p.finish(method, start)
	return method, nil
}

func (p *Parser) constructor(start Token, mods ast.Modifiers, hasSuper, withBody bool) (*ast.ConstructorDeclaration, error) {
	name := p.advance()
	params, err := p.parameters()
	if err != nil {
		return nil, err
	}
	ctor := ast.NewConstructorDeclaration(mods, name.Lexeme, params, nil, nil)
	if !withBody {
		p.finish(ctor, start)
		return ctor, nil
	}
	bodyStart, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	if p.check("super") && p.peekAt(p.pos+1).Is("(") {
		superStart := p.advance()
		args, err := p.arguments()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		ctor.SuperCall = ast.NewSuperConstructorCall(args, false)
		p.finish(ctor.SuperCall, superStart)
	} else if hasSuper {
		ctor.SuperCall = ast.NewSuperConstructorCall(nil, true)
		ast.SetSpan(ctor.SuperCall, ast.Span{Start: bodyStart.Pos, End: bodyStart.End})
	}
	stmts, err := p.statementsUntilBrace()
	if err != nil {
		return nil, err
	}
	ctor.Body = ast.NewBlock(stmts)
	p.finish(ctor.Body, bodyStart)
	p.finish(ctor, start)
	return ctor, nil
}

func (p *Parser) parameters() ([]*ast.Parameter, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	if p.match(")") {
		return params, nil
	}
	for {
		start := p.peek()
		typ, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		param := ast.NewParameter(typ, name.Lexeme)
		p.finish(param, start)
		params = append(params, param)
		if !p.match(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return params, nil
}

// ParseClassHeader parses a bodiless class header such as
// "class List<E>" or "class TestList<F> extends List<F>".
func ParseClassHeader(src string) (*ast.ClassDeclaration, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := New(tokens)
	start := p.peek()
	cls, err := p.classHeader()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	p.finish(cls, start)
	return cls, nil
}

// ParseMemberSignature parses a bodiless member of className, e.g.
// "static int parseInt(String text)", "List()" or "static PrintStream out".
// The result is a *ast.MethodDeclaration, *ast.ConstructorDeclaration or
// *ast.FieldDeclaration.
func ParseMemberSignature(className, src string) (ast.Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := New(tokens)
	p.className = className
	member, err := p.member(false, false)
	if err != nil {
		return nil, err
	}
	p.match(";")
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return member, nil
}

// ParseTypeRef parses a standalone type reference such as "List<E>".
func ParseTypeRef(src string) (*ast.TypeRef, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := New(tokens)
	ref, err := p.typeRef()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return ref, nil
}
