// Package cells turns a byte buffer into a forward-only sequence of cells.
//
// A cell is one byte of the buffer together with its position. Bits inside
// a cell are numbered on-wire style: bit 0 is the most significant bit.
//
//	buffer  0x81          0x83
//	bits    1000 0001     1000 0011
//	index   0123 4567     0123 4567   (cell-local)
//	offset  0 ........ 7  8 ....... 15 (global)
//
// A Source is single-consumer and not safe for concurrent use. Creating a
// new Source over the same buffer always yields the same cells.
package cells
