// Package geometry holds the input and output vocabulary of the packer:
// containers, boxes, the six box orientations, placements and packings,
// together with validation of inputs and verification of finished packings.
package geometry
