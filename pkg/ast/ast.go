package ast

type NodeType string

const (
	NodeCompilationUnit      NodeType = "CompilationUnit"
	NodeImportDeclaration    NodeType = "ImportDeclaration"
	NodeTypeRef              NodeType = "TypeRef"
	NodeTypeParameter        NodeType = "TypeParameter"
	NodeClassDeclaration     NodeType = "ClassDeclaration"
	NodeFieldDeclaration     NodeType = "FieldDeclaration"
	NodeParameter            NodeType = "Parameter"
	NodeConstructorDecl      NodeType = "ConstructorDeclaration"
	NodeSuperConstructorCall NodeType = "SuperConstructorCall"
	NodeMethodDeclaration    NodeType = "MethodDeclaration"
	NodeBlock                NodeType = "Block"
	NodeIfStatement          NodeType = "IfStatement"
	NodeWhileStatement       NodeType = "WhileStatement"
	NodeForStatement         NodeType = "ForStatement"
	NodeReturnStatement      NodeType = "ReturnStatement"
	NodeLocalVarDeclaration  NodeType = "LocalVarDeclaration"
	NodeExpressionStatement  NodeType = "ExpressionStatement"
	NodeEmptyStatement       NodeType = "EmptyStatement"
	NodeIntegerLiteral       NodeType = "IntegerLiteral"
	NodeFloatLiteral         NodeType = "FloatLiteral"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeBooleanLiteral       NodeType = "BooleanLiteral"
	NodeNullLiteral          NodeType = "NullLiteral"
	NodeVariable             NodeType = "Variable"
	NodeFieldAccess          NodeType = "FieldAccess"
	NodeMethodCall           NodeType = "MethodCall"
	NodeNewExpression        NodeType = "NewExpression"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeUnaryExpression      NodeType = "UnaryExpression"
	NodeAssignmentExpression NodeType = "AssignmentExpression"
	NodeTernaryExpression    NodeType = "TernaryExpression"
	NodeCastExpression       NodeType = "CastExpression"
	NodeInstanceOfExpression NodeType = "InstanceOfExpression"
	NodeThisExpression       NodeType = "ThisExpression"
	NodeSuperExpression      NodeType = "SuperExpression"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// AssignmentTarget is implemented by the expressions allowed on the left of
// `=` and as operands of `++`/`--`.
type AssignmentTarget interface {
	Expression
	assignmentTargetNode()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTargetNode() {}

// Modifiers records declaration modifiers. Only Static changes semantics.
type Modifiers struct {
	Static bool   `json:"static,omitempty"`
	Final  bool   `json:"final,omitempty"`
	Access string `json:"access,omitempty"`
}

// Compilation unit

type CompilationUnit struct {
	nodeImpl

	Imports []*ImportDeclaration `json:"imports"`
	Classes []*ClassDeclaration  `json:"classes"`
}

func NewCompilationUnit(imports []*ImportDeclaration, classes []*ClassDeclaration) *CompilationUnit {
	return &CompilationUnit{nodeImpl: newNodeImpl(NodeCompilationUnit), Imports: imports, Classes: classes}
}

type ImportDeclaration struct {
	nodeImpl

	Path     []string `json:"path"`
	Wildcard bool     `json:"wildcard,omitempty"`
}

func NewImportDeclaration(path []string, wildcard bool) *ImportDeclaration {
	return &ImportDeclaration{nodeImpl: newNodeImpl(NodeImportDeclaration), Path: path, Wildcard: wildcard}
}

// SimpleName returns the last path segment, or "" for wildcard imports.
func (d *ImportDeclaration) SimpleName() string {
	if d.Wildcard || len(d.Path) == 0 {
		return ""
	}
	return d.Path[len(d.Path)-1]
}

// Types

type TypeRef struct {
	nodeImpl

	Name string     `json:"name"`
	Args []*TypeRef `json:"args,omitempty"`
}

func NewTypeRef(name string, args []*TypeRef) *TypeRef {
	return &TypeRef{nodeImpl: newNodeImpl(NodeTypeRef), Name: name, Args: args}
}

type TypeParameter struct {
	nodeImpl

	Name string `json:"name"`
}

func NewTypeParameter(name string) *TypeParameter {
	return &TypeParameter{nodeImpl: newNodeImpl(NodeTypeParameter), Name: name}
}

// Declarations

type ClassDeclaration struct {
	nodeImpl

	Modifiers    Modifiers                 `json:"modifiers"`
	Name         string                    `json:"name"`
	TypeParams   []*TypeParameter          `json:"typeParams,omitempty"`
	Super        *TypeRef                  `json:"super,omitempty"`
	Fields       []*FieldDeclaration       `json:"fields"`
	Constructors []*ConstructorDeclaration `json:"constructors"`
	Methods      []*MethodDeclaration      `json:"methods"`
	// Native marks classes declared through the native bridge. Their members
	// carry no bodies.
	Native bool `json:"native,omitempty"`
}

func NewClassDeclaration(name string, typeParams []*TypeParameter, super *TypeRef) *ClassDeclaration {
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), Name: name, TypeParams: typeParams, Super: super}
}

type FieldDeclaration struct {
	nodeImpl

	Modifiers Modifiers `json:"modifiers"`
	Type      *TypeRef  `json:"fieldType"`
	Name      string    `json:"name"`
}

func NewFieldDeclaration(mods Modifiers, typ *TypeRef, name string) *FieldDeclaration {
	return &FieldDeclaration{nodeImpl: newNodeImpl(NodeFieldDeclaration), Modifiers: mods, Type: typ, Name: name}
}

type Parameter struct {
	nodeImpl

	Type *TypeRef `json:"paramType"`
	Name string   `json:"name"`
}

func NewParameter(typ *TypeRef, name string) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Type: typ, Name: name}
}

// SuperConstructorCall is the leading `super(...)` of a constructor. Implicit
// calls are inserted by the parser when a class extends another and the
// constructor body does not start with one.
type SuperConstructorCall struct {
	nodeImpl

	Args     []Expression `json:"args"`
	Implicit bool         `json:"implicit,omitempty"`
}

func NewSuperConstructorCall(args []Expression, implicit bool) *SuperConstructorCall {
	return &SuperConstructorCall{nodeImpl: newNodeImpl(NodeSuperConstructorCall), Args: args, Implicit: implicit}
}

type ConstructorDeclaration struct {
	nodeImpl

	Modifiers Modifiers             `json:"modifiers"`
	Name      string                `json:"name"`
	Params    []*Parameter          `json:"params"`
	SuperCall *SuperConstructorCall `json:"superCall,omitempty"`
	Body      *Block                `json:"body,omitempty"`
}

func NewConstructorDeclaration(mods Modifiers, name string, params []*Parameter, superCall *SuperConstructorCall, body *Block) *ConstructorDeclaration {
	return &ConstructorDeclaration{
		nodeImpl:  newNodeImpl(NodeConstructorDecl),
		Modifiers: mods,
		Name:      name,
		Params:    params,
		SuperCall: superCall,
		Body:      body,
	}
}

type MethodDeclaration struct {
	nodeImpl

	Modifiers  Modifiers        `json:"modifiers"`
	TypeParams []*TypeParameter `json:"typeParams,omitempty"`
	// ReturnType is nil for void methods.
	ReturnType *TypeRef     `json:"returnType,omitempty"`
	Name       string       `json:"name"`
	Params     []*Parameter `json:"params"`
	Body       *Block       `json:"body,omitempty"`
}

func NewMethodDeclaration(mods Modifiers, typeParams []*TypeParameter, returnType *TypeRef, name string, params []*Parameter, body *Block) *MethodDeclaration {
	return &MethodDeclaration{
		nodeImpl:   newNodeImpl(NodeMethodDeclaration),
		Modifiers:  mods,
		TypeParams: typeParams,
		ReturnType: returnType,
		Name:       name,
		Params:     params,
		Body:       body,
	}
}

// Statements

type Block struct {
	nodeImpl
	statementMarker

	Statements []Statement `json:"statements"`
}

func NewBlock(statements []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Statements: statements}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Then      Statement  `json:"then"`
	Else      Statement  `json:"else,omitempty"`
}

func NewIfStatement(cond Expression, then, elseStmt Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: cond, Then: then, Else: elseStmt}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewWhileStatement(cond Expression, body Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: cond, Body: body}
}

type ForStatement struct {
	nodeImpl
	statementMarker

	Init      Statement    `json:"init,omitempty"`
	Condition Expression   `json:"condition,omitempty"`
	Update    []Expression `json:"update,omitempty"`
	Body      Statement    `json:"body"`
}

func NewForStatement(init Statement, cond Expression, update []Expression, body Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Condition: cond, Update: update, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

type LocalVarDeclaration struct {
	nodeImpl
	statementMarker

	Type *TypeRef   `json:"varType"`
	Name string     `json:"name"`
	Init Expression `json:"init,omitempty"`
}

func NewLocalVarDeclaration(typ *TypeRef, name string, init Expression) *LocalVarDeclaration {
	return &LocalVarDeclaration{nodeImpl: newNodeImpl(NodeLocalVarDeclaration), Type: typ, Name: name, Init: init}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type EmptyStatement struct {
	nodeImpl
	statementMarker
}

func NewEmptyStatement() *EmptyStatement {
	return &EmptyStatement{nodeImpl: newNodeImpl(NodeEmptyStatement)}
}

// Literals

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value int32 `json:"value"`
}

func NewIntegerLiteral(value int32) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

// Expressions

// Variable is a bare identifier in expression position. The analyzer decides
// whether it names a local, a field, or a class.
type Variable struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewVariable(name string) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

type FieldAccess struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Target Expression `json:"target"`
	Name   string     `json:"name"`
}

func NewFieldAccess(target Expression, name string) *FieldAccess {
	return &FieldAccess{nodeImpl: newNodeImpl(NodeFieldAccess), Target: target, Name: name}
}

// MethodCall has a nil Target for unqualified calls such as `helper(x)`.
type MethodCall struct {
	nodeImpl
	expressionMarker

	Target Expression   `json:"target,omitempty"`
	Name   string       `json:"name"`
	Args   []Expression `json:"args"`
}

func NewMethodCall(target Expression, name string, args []Expression) *MethodCall {
	return &MethodCall{nodeImpl: newNodeImpl(NodeMethodCall), Target: target, Name: name, Args: args}
}

type NewExpression struct {
	nodeImpl
	expressionMarker

	Type *TypeRef     `json:"newType"`
	Args []Expression `json:"args"`
}

func NewNewExpression(typ *TypeRef, args []Expression) *NewExpression {
	return &NewExpression{nodeImpl: newNodeImpl(NodeNewExpression), Type: typ, Args: args}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(op string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: op, Left: left, Right: right}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
	Postfix  bool       `json:"postfix,omitempty"`
}

func NewUnaryExpression(op string, operand Expression, postfix bool) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: op, Operand: operand, Postfix: postfix}
}

// IsIncrement reports whether the expression is a ++ or -- in either position.
func (e *UnaryExpression) IsIncrement() bool {
	return e.Operator == "++" || e.Operator == "--"
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker

	Operator string           `json:"operator"`
	Target   AssignmentTarget `json:"target"`
	Value    Expression       `json:"value"`
}

func NewAssignmentExpression(op string, target AssignmentTarget, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: op, Target: target, Value: value}
}

type TernaryExpression struct {
	nodeImpl
	expressionMarker

	Condition Expression `json:"condition"`
	Then      Expression `json:"then"`
	Else      Expression `json:"else"`
}

func NewTernaryExpression(cond, then, elseExpr Expression) *TernaryExpression {
	return &TernaryExpression{nodeImpl: newNodeImpl(NodeTernaryExpression), Condition: cond, Then: then, Else: elseExpr}
}

type CastExpression struct {
	nodeImpl
	expressionMarker

	Type    *TypeRef   `json:"castType"`
	Operand Expression `json:"operand"`
}

func NewCastExpression(typ *TypeRef, operand Expression) *CastExpression {
	return &CastExpression{nodeImpl: newNodeImpl(NodeCastExpression), Type: typ, Operand: operand}
}

type InstanceOfExpression struct {
	nodeImpl
	expressionMarker

	Operand Expression `json:"operand"`
	Type    *TypeRef   `json:"testType"`
}

func NewInstanceOfExpression(operand Expression, typ *TypeRef) *InstanceOfExpression {
	return &InstanceOfExpression{nodeImpl: newNodeImpl(NodeInstanceOfExpression), Operand: operand, Type: typ}
}

type ThisExpression struct {
	nodeImpl
	expressionMarker
}

func NewThisExpression() *ThisExpression {
	return &ThisExpression{nodeImpl: newNodeImpl(NodeThisExpression)}
}

// SuperExpression only appears as the target of a field access or method call.
type SuperExpression struct {
	nodeImpl
	expressionMarker
}

func NewSuperExpression() *SuperExpression {
	return &SuperExpression{nodeImpl: newNodeImpl(NodeSuperExpression)}
}
