/*
Package navigation models the menus shown to a user and the history that makes
"back" possible.

A Frame is an opaque snapshot of one rendered menu: its prompt and the rows of
choices it offered. A Stack records the frames a user has seen, newest on top.

Pop has peek-after-pop semantics: it discards the current frame and reports the
frame that is now showing. It never exposes the discarded frame, and it refuses
to go below the root menu.
*/
package navigation
