/*
Package weavetest provides helpers and mock implementations for writing
tests of handlers, decorators and extensions.
*/
package weavetest
