// Package transform compiles expr-lang expressions into line transformers.
//
// An expression sees the logical line as line and must evaluate to a string:
//
//	upper(line)
//	line startsWith "export " ? line[7:] : line
//	replace(line, "${HOME}", env("HOME"))
//
// Use [Program.Transformer] with [line.WithTransformer], or [CompileAll] to
// chain several expressions.
package transform
