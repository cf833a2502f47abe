// Package compiler turns a graph into callable evaluation functions: Compile
// resolves the whole graph eagerly by driving the staged scheduler to
// completion, CompileLazy resolves only the transitive closure of requested
// targets with an explicit work stack.
package compiler
