// Package expr provides CEL (Common Expression Language) environments for
// selecting trace events.
//
// Environments created here include the CEL string and list extensions and
// clause helpers:
//   - isFailure(string): true for the "fail" and "backtrack" kinds
//   - isRule(string): true if the text contains a rule separator
//   - clauseHead(string): the head of a rule, or the text itself for a fact
//   - clauseBody(string): the body of a rule, or "" for a fact
package expr
