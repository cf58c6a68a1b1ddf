// Package reading keeps a reader's place inside a document across sessions.
//
// A position is stored as a structural coordinate (block index plus the
// block's offset from a fixed anchor line) rather than a scroll offset, so it
// can be re-applied after the document is rendered again with different
// layout. The rendering layer exposes its document through BlockEnumerator;
// TextDocument is such an enumerator for HTML bodies shown in a terminal.
package reading
