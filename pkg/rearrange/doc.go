/*
Package rearrange assigns boxes to rooms and turns the assignment into transport tasks.

Every room with a drop point receives one distinct box. A candidate pair is accepted when
the constraint expression holds; the default forbids a box in a room of its own colour:

	box.color != room.color

The search is a plain backtracking search: rooms in map order, boxes in map order, first
consistent assignment wins.
*/
package rearrange
