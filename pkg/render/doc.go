// Package render draws a laid-out table as bordered text.
//
// Rendering is a pure function of the table and the style: it never fails
// and the same input always yields the same lines. Widths are measured on
// plain text and colors are applied afterwards, so colored and plain
// output line up identically.
//
// A byte table with one byte looks like this:
//
//	       +--------+--------+--------+--------+--------+--------+--------+--------+
//	 Bytes | Byte 0 | Byte 1 | Byte 2 | Byte 3 | Byte 4 | Byte 5 | Byte 6 | Byte 7 |
//	+------+--------+--------+--------+--------+--------+--------+--------+--------+
//	|QWORD |10000001|
//	|  1   |   (129)|
//	+------+--------+
package render
