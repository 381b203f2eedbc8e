package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders a type reference the way it is written in source.
func (t *TypeRef) String() string {
	if t == nil {
		return "void"
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

// Dump renders a node as an indented S-expression. Declarations and
// statements take one line each; expressions stay on the line of their owner.
func Dump(node Node) string {
	d := &dumper{}
	d.node(node, 0)
	return d.sb.String()
}

// DumpExpression renders a single expression on one line.
func DumpExpression(expr Expression) string {
	return exprString(expr)
}

type dumper struct {
	sb strings.Builder
}

func (d *dumper) line(depth int, format string, args ...any) {
	d.sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&d.sb, format, args...)
	d.sb.WriteByte('\n')
}

func (d *dumper) node(node Node, depth int) {
	switch n := node.(type) {
	case *CompilationUnit:
		d.line(depth, "(unit")
		for _, imp := range n.Imports {
			d.node(imp, depth+1)
		}
		for _, cls := range n.Classes {
			d.node(cls, depth+1)
		}
		d.line(depth, ")")
	case *ImportDeclaration:
		path := strings.Join(n.Path, ".")
		if n.Wildcard {
			path += ".*"
		}
		d.line(depth, "(import %s)", path)
	case *ClassDeclaration:
		header := "(class " + modifierPrefix(n.Modifiers) + n.Name + typeParamString(n.TypeParams)
		if n.Super != nil {
			header += " extends " + n.Super.String()
		}
		d.line(depth, "%s", header)
		for _, field := range n.Fields {
			d.node(field, depth+1)
		}
		for _, ctor := range n.Constructors {
			d.node(ctor, depth+1)
		}
		for _, method := range n.Methods {
			d.node(method, depth+1)
		}
		d.line(depth, ")")
	case *FieldDeclaration:
		d.line(depth, "(field %s%s %s)", modifierPrefix(n.Modifiers), n.Type, n.Name)
	case *ConstructorDeclaration:
		d.line(depth, "(ctor %s%s%s", modifierPrefix(n.Modifiers), n.Name, paramString(n.Params))
		if n.SuperCall != nil {
			if n.SuperCall.Implicit {
				d.line(depth+1, "(super-implicit)")
			} else {
				d.line(depth+1, "(super%s)", argString(n.SuperCall.Args))
			}
		}
		if n.Body != nil {
			d.node(n.Body, depth+1)
		}
		d.line(depth, ")")
	case *MethodDeclaration:
		d.line(depth, "(method %s%s%s %s%s", modifierPrefix(n.Modifiers), typeParamPrefix(n.TypeParams), n.ReturnType, n.Name, paramString(n.Params))
		if n.Body != nil {
			d.node(n.Body, depth+1)
		}
		d.line(depth, ")")
	case *Block:
		if len(n.Statements) == 0 {
			d.line(depth, "(block)")
			return
		}
		d.line(depth, "(block")
		for _, stmt := range n.Statements {
			d.node(stmt, depth+1)
		}
		d.line(depth, ")")
	case *IfStatement:
		d.line(depth, "(if %s", exprString(n.Condition))
		d.node(n.Then, depth+1)
		if n.Else != nil {
			d.line(depth, " else")
			d.node(n.Else, depth+1)
		}
		d.line(depth, ")")
	case *WhileStatement:
		d.line(depth, "(while %s", exprString(n.Condition))
		d.node(n.Body, depth+1)
		d.line(depth, ")")
	case *ForStatement:
		d.line(depth, "(for")
		if n.Init != nil {
			d.node(n.Init, depth+1)
		} else {
			d.line(depth+1, "_")
		}
		if n.Condition != nil {
			d.line(depth+1, "%s", exprString(n.Condition))
		} else {
			d.line(depth+1, "_")
		}
		updates := make([]string, len(n.Update))
		for i, u := range n.Update {
			updates[i] = exprString(u)
		}
		d.line(depth+1, "(%s)", strings.Join(updates, " "))
		d.node(n.Body, depth+1)
		d.line(depth, ")")
	case *ReturnStatement:
		if n.Value == nil {
			d.line(depth, "(return)")
		} else {
			d.line(depth, "(return %s)", exprString(n.Value))
		}
	case *LocalVarDeclaration:
		if n.Init == nil {
			d.line(depth, "(local %s %s)", n.Type, n.Name)
		} else {
			d.line(depth, "(local %s %s %s)", n.Type, n.Name, exprString(n.Init))
		}
	case *ExpressionStatement:
		d.line(depth, "(expr %s)", exprString(n.Expression))
	case *EmptyStatement:
		d.line(depth, "(empty)")
	case Expression:
		d.line(depth, "%s", exprString(n))
	case *TypeRef:
		d.line(depth, "%s", n)
	case nil:
		d.line(depth, "nil")
	default:
		d.line(depth, "(? %s)", node.NodeType())
	}
}

func exprString(expr Expression) string {
	switch e := expr.(type) {
	case nil:
		return "_"
	case *IntegerLiteral:
		return strconv.FormatInt(int64(e.Value), 10)
	case *FloatLiteral:
		text := strconv.FormatFloat(e.Value, 'g', -1, 64)
		if !strings.ContainsAny(text, ".eEn") {
			text += ".0"
		}
		return text
	case *StringLiteral:
		return strconv.Quote(e.Value)
	case *BooleanLiteral:
		return strconv.FormatBool(e.Value)
	case *NullLiteral:
		return "null"
	case *Variable:
		return e.Name
	case *ThisExpression:
		return "this"
	case *SuperExpression:
		return "super"
	case *FieldAccess:
		return fmt.Sprintf("(. %s %s)", exprString(e.Target), e.Name)
	case *MethodCall:
		return fmt.Sprintf("(call %s %s%s)", exprString(e.Target), e.Name, argString(e.Args))
	case *NewExpression:
		return fmt.Sprintf("(new %s%s)", e.Type, argString(e.Args))
	case *BinaryExpression:
		return fmt.Sprintf("(%s %s %s)", e.Operator, exprString(e.Left), exprString(e.Right))
	case *UnaryExpression:
		op := e.Operator
		if e.IsIncrement() {
			if e.Postfix {
				op = "post" + op
			} else {
				op = "pre" + op
			}
		}
		return fmt.Sprintf("(%s %s)", op, exprString(e.Operand))
	case *AssignmentExpression:
		return fmt.Sprintf("(%s %s %s)", e.Operator, exprString(e.Target), exprString(e.Value))
	case *TernaryExpression:
		return fmt.Sprintf("(? %s %s %s)", exprString(e.Condition), exprString(e.Then), exprString(e.Else))
	case *CastExpression:
		return fmt.Sprintf("(cast %s %s)", e.Type, exprString(e.Operand))
	case *InstanceOfExpression:
		return fmt.Sprintf("(instanceof %s %s)", exprString(e.Operand), e.Type)
	default:
		return fmt.Sprintf("(? %s)", expr.NodeType())
	}
}

func argString(args []Expression) string {
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteByte(' ')
		sb.WriteString(exprString(arg))
	}
	return sb.String()
}

func paramString(params []*Parameter) string {
	var sb strings.Builder
	for _, p := range params {
		fmt.Fprintf(&sb, " (%s %s)", p.Type, p.Name)
	}
	return sb.String()
}

func typeParamString(params []*TypeParameter) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return "<" + strings.Join(names, ", ") + ">"
}

func typeParamPrefix(params []*TypeParameter) string {
	if len(params) == 0 {
		return ""
	}
	return typeParamString(params) + " "
}

func modifierPrefix(mods Modifiers) string {
	var parts []string
	if mods.Access != "" {
		parts = append(parts, mods.Access)
	}
	if mods.Static {
		parts = append(parts, "static")
	}
	if mods.Final {
		parts = append(parts, "final")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}
