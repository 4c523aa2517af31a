// Package token defines lexical token kinds and block roles for the Ruby-like
// languages analyzed by faultline.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Keywords used as method names, symbols or labels are lexed as Ident/Symbol/Label.
//   - Role is assigned by the lexer from local context only; it never depends on
//     lines the token does not share a statement with.
package token
