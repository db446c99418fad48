// Package viz runs the glow field in a terminal.
//
// The field is painted onto a braille [Canvas], which always gets the
// performance tier. A side panel shows the mode, the render tier, particle
// counts and an energy chart, and is themed after the active palette.
//
// # Key Bindings
//
//	1/2/3 - Attract, repel, swirl
//	M     - Cycle mode
//	B     - Burst at the pointer
//	W     - Wave from the pointer
//	E     - Energy boost
//	C     - Chaos at the pointer
//	P     - Toggle performance mode
//	I     - Toggle the anchor indicator
//	T     - Toggle particle trails
//	N     - Cycle palette
//	A     - Toggle the ambient drone
//	D     - Toggle the binaural drone
//	+/-   - Master volume up and down
//	R     - Record a GIF clip
//	H     - Toggle the panel
//	Q     - Quit
//
// Holding the left or right mouse button anchors the field under the pointer
// in the selected mode, the middle button spawns a burst, and a fast sweep
// with no button held drags particles along.
package viz
