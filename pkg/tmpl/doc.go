// Package tmpl is the progress template language.
//
// A template is literal text interleaved with directives:
//
//	{name}                 raw value
//	{name:format:p1:p2}    formatted value
//	{?name}...{/}          section shown when name is truthy
//	{!name}...{/}          section shown when name is falsy
//
// Templates are parsed once into an immutable segment list and rendered
// any number of times, from any number of goroutines. Sections do not
// nest. {{ and }} produce literal braces and a { without a closing brace
// is kept as text.
package tmpl
