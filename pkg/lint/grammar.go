package lint

import (
	"github.com/alecthomas/participle/v2"
)

// The grammar accepts the conventional clause syntax. Evaluation never uses
// it: clauses are matched as text, so it only drives the syntax check.

type clauseNode struct {
	Head *termNode   `@@`
	Body []*goalNode `( ":" "-" @@ ( "," @@ )* )?`
}

type goalNode struct {
	Cut  bool      `  @"!"`
	Term *termNode `| @@`
}

type termNode struct {
	Name string      `( @Ident | @String | @Char | @Int | @Float`
	List *listNode   `| @@ )`
	Args []*termNode `( "(" @@ ( "," @@ )* ")" )?`
}

type listNode struct {
	Items []*termNode `"[" ( @@ ( "," @@ )*`
	Tail  *termNode   `( "|" @@ )? )? "]"`
}

var parser = participle.MustBuild(&clauseNode{})
