// Package zigzag provides the fixed permutation between JPEG's natural
// (zigzag) coefficient order and raster (row-major) order.
package zigzag

// Natural maps zigzag index -> raster index. Position 0 is DC; positions
// 1..63 are AC in the standard zigzag traversal of an 8x8 block.
var Natural = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// ToRaster is an alias for Natural, named for the direction it's used in
// at call sites that read more clearly as "zigzag index -> raster index".
var ToRaster = Natural

// raster holds the inverse permutation, built once at init.
var raster [64]int

func init() {
	for zz, r := range Natural {
		raster[r] = zz
	}
}

// FromRaster maps raster index -> zigzag index (the inverse of Natural).
func FromRaster(r int) int {
	return raster[r]
}

// RasterToZigzag returns the full inverse permutation table.
func RasterToZigzag() [64]int {
	return raster
}
