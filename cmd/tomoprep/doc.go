/*
tomoprep prepares cryo-electron tomography datasets for training a point
skeletonization network.  It merges point annotations into segmentation
volumes and checks training run descriptions.

Documentation can be found nicely formatted at http://godoc.org/github.com/janelia-flyem/tomoprep

Datasets

A dataset is a directory holding one segmentation volume in MRC format and
one or more newline-delimited JSON annotation files.  All datasets sit under
the "annotations" directory of a base:

	data/annotations/TS_5_4/TS_5_4_segmentation.mrc
	data/annotations/TS_5_4/TS_5_4_ribosome.ndjson
	data/annotations/TS_5_4/TS_5_4_fatty_acid_synthase.ndjson

Each annotation record carries a location in voxel coordinates:

	{"type": "orientedPoint", "location": {"x": 418.2, "y": 77.9, "z": 120.0}}

The label class of an annotation file is the first class, in configuration
order, whose name is part of the file name.

Commands

In the following documentation, the type of brackets designate
<required parameter> and [optional parameter].

	tomoprep about

Prints the version of tomoprep and the configured label classes.

	tomoprep merge [base] [output=name] [labels=class,class,...]

Paints a sphere of the class value around every annotated point of each
dataset and writes the result as "merged_point_annotations.mrc" (or the given
output name) next to the segmentation.  The merged file keeps the segmentation's
header.  Classes are painted in configuration order, so later classes win where
spheres overlap.  The base defaults to the configured one and may be a local
directory, a "file://" URL, or a Google Cloud Storage URL like "gs://bucket/data".

	tomoprep train [/path/to/manifest.json] [patch=96,96,96] [stride=48,48,48]

Validates the configured training run, finds its HDF5 training and validation
files, and writes a JSON manifest for the trainer.  The patch shape and stride
settings override the configuration; the spatial pad grows to fit the patch.

Configuration

All settings have defaults.  A TOML file given with the -config option can
override any of them:

	[merge]
	base = "./data"
	output = "merged_point_annotations"

	[[label]]
	name = "ribosome"
	value = 20
	radius = 6

	[[label]]
	name = "fatty_acid_synthase"
	value = 21
	radius = 8

	[logging]
	logfile = "/tmp/tomoprep.log"
	max_log_size = 500 # MB
	max_log_age = 30   # days

	[train]
	batch_size = 1
	patch_shape = [96, 96, 96]

	[train.train]
	glob_pattern = "./test/*.h5"

Relative paths are relative to the TOML file's directory.  A [[label]] table
replaces the default classes entirely.
*/
package main
