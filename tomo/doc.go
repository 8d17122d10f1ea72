/*
	Package tomo provides types, constants and functions that have no other dependencies
	and can be used by all packages within tomoprep: voxel points and extents, voxel
	data types, leveled logging, and command-line argument handling.
*/
package tomo
