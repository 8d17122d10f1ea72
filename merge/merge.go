/*
	Package merge paints point annotations into the segmentation volume of each
	dataset.  A dataset tree looks like:

		<base>/annotations/<dataset>/segmentation.mrc
		<base>/annotations/<dataset>/ribosome_points.ndjson
		<base>/annotations/<dataset>/fatty_acid_synthase_points.ndjson

	Every annotation point becomes a sphere of its label class, and the merged
	volume is written next to the inputs with the base volume's header.
*/
package merge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/tomoprep/annotation"
	"github.com/janelia-flyem/tomoprep/config"
	"github.com/janelia-flyem/tomoprep/labels"
	"github.com/janelia-flyem/tomoprep/mrc"
	"github.com/janelia-flyem/tomoprep/storage"
	"github.com/janelia-flyem/tomoprep/tomo"
)

// AnnotationExt is the file extension of point annotation files.
const AnnotationExt = ".ndjson"

// ErrNoBaseVolume is returned when a dataset has annotations but no segmentation volume.
var ErrNoBaseVolume = errors.New("no base MRC volume")

// ClassResult describes the painting of one label class into a dataset volume.
type ClassResult struct {
	Class   labels.Class
	Files   []string
	Points  int
	Written int64 // voxel writes, including overwrites
}

// Result describes a merged dataset.
type Result struct {
	Dataset string
	Base    string
	Output  string
	Classes []ClassResult
	Skipped []string // annotation files that match no label class
	Counts  map[int64]int64
}

// Driver merges the datasets of a store.
type Driver struct {
	store       *storage.Store
	annotations string
	output      string
	table       labels.Table
}

// NewDriver returns a driver for the datasets under the configured annotations
// directory of the store.
func NewDriver(store *storage.Store, cfg config.MergeConfig, table labels.Table) (*Driver, error) {
	if store == nil {
		return nil, fmt.Errorf("merge driver needs a store")
	}
	if cfg.Output == "" {
		return nil, fmt.Errorf("merge driver needs an output name")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Driver{
		store:       store,
		annotations: cfg.Annotations,
		output:      cfg.Output,
		table:       table,
	}, nil
}

// Datasets returns the sorted dataset names.
func (d *Driver) Datasets(ctx context.Context) ([]string, error) {
	return d.store.Dirs(ctx, d.annotations)
}

// isOutput returns true if the file name is a merged volume written by the driver.
func (d *Driver) isOutput(name string) bool {
	return name == d.output+".mrc" || name == d.output+".mrc.gz"
}

func isAnnotation(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), AnnotationExt)
}

// MergeAll merges every dataset in name order, stopping at the first failure.
// Datasets with nothing to merge are skipped and have no result.
func (d *Driver) MergeAll(ctx context.Context) ([]Result, error) {
	datasets, err := d.Datasets(ctx)
	if err != nil {
		return nil, err
	}
	if len(datasets) == 0 {
		tomo.Warningf("No datasets found under %q in %s\n", d.annotations, d.store)
		return nil, nil
	}
	timedLog := tomo.NewTimeLog()
	var results []Result
	for _, name := range datasets {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := d.MergeDataset(ctx, name)
		if err != nil {
			return results, err
		}
		if result != nil {
			results = append(results, *result)
		}
	}
	timedLog.Infof("Merged %d of %d datasets in %s\n", len(results), len(datasets), d.store)
	return results, nil
}

// MergeDataset paints the dataset's annotations into its base volume and writes
// the merged volume.  A nil result with no error means the dataset had nothing to merge.
func (d *Driver) MergeDataset(ctx context.Context, dataset string) (*Result, error) {
	dir := storage.Key(d.annotations, dataset)
	files, err := d.store.Files(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		tomo.Warningf("Dataset %q has no files, skipping\n", dataset)
		return nil, nil
	}

	result := &Result{Dataset: dataset}
	owned := make(map[string][]string, len(d.table))
	var numAnnotations int
	for _, name := range files {
		switch {
		case d.isOutput(name):
		case mrc.IsMRC(name):
			if result.Base == "" {
				result.Base = name
			}
		case isAnnotation(name):
			numAnnotations++
			cl, found := d.table.Match(name)
			if !found {
				tomo.Warningf("Annotation file %q in dataset %q matches no label class %v, skipping\n",
					name, dataset, d.table.Names())
				result.Skipped = append(result.Skipped, name)
				continue
			}
			owned[cl.Name] = append(owned[cl.Name], name)
		}
	}
	if numAnnotations == 0 {
		tomo.Warningf("Dataset %q has no %s annotation files, skipping\n", dataset, AnnotationExt)
		return nil, nil
	}
	if result.Base == "" {
		return nil, fmt.Errorf("dataset %q has %d annotation files: %w", dataset, numAnnotations, ErrNoBaseVolume)
	}

	timedLog := tomo.NewTimeLog()
	baseKey := storage.Key(dir, result.Base)
	data, err := d.store.ReadAll(ctx, baseKey)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", dataset, err)
	}
	f, err := mrc.Unmarshal(result.Base, data)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", dataset, err)
	}
	vol, err := labels.NewVolumeFromBytes(f.Header.Size(), f.DataType(), f.Data)
	if err != nil {
		return nil, fmt.Errorf("dataset %q base %q: %w", dataset, result.Base, err)
	}
	tomo.Debugf("Dataset %q base %q: %s, %s voxels in %s\n", dataset, result.Base, f.Header,
		humanize.Comma(vol.NumVoxels()), humanize.Bytes(uint64(len(data))))
	for _, label := range f.Header.Labels() {
		tomo.Debugf("Dataset %q base label: %s\n", dataset, label)
	}

	for _, cl := range d.table {
		clResult := ClassResult{Class: cl, Files: owned[cl.Name]}
		for _, name := range clResult.Files {
			points, err := d.readPoints(ctx, storage.Key(dir, name))
			if err != nil {
				return nil, fmt.Errorf("dataset %q: %w", dataset, err)
			}
			written, err := labels.InsertClass(vol, points, cl)
			if err != nil {
				return nil, fmt.Errorf("dataset %q annotation file %q: %w", dataset, name, err)
			}
			tomo.Debugf("Painted %d %s points from %q: %s voxel writes\n",
				len(points), cl.Name, name, humanize.Comma(written))
			clResult.Points += len(points)
			clResult.Written += written
		}
		result.Classes = append(result.Classes, clResult)
	}

	f.UpdateStatistics()
	result.Output = d.output + ".mrc"
	if mrc.IsGzipped(result.Base) {
		result.Output += ".gz"
	}
	out, err := mrc.Marshal(result.Output, f)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", dataset, err)
	}
	if err := d.store.WriteAll(ctx, storage.Key(dir, result.Output), out); err != nil {
		return nil, fmt.Errorf("dataset %q: %w", dataset, err)
	}
	result.Counts = vol.Counts()
	timedLog.Infof("Merged dataset %q into %q (%s): %s\n", dataset, result.Output,
		humanize.Bytes(uint64(len(out))), result.Summary())
	return result, nil
}

func (d *Driver) readPoints(ctx context.Context, key string) ([]tomo.Point3d, error) {
	r, err := d.store.NewReader(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	locs, err := annotation.ReadPoints(r)
	if err != nil {
		return nil, fmt.Errorf("annotation file %q: %w", key, err)
	}
	points, err := annotation.Voxels(locs)
	if err != nil {
		return nil, fmt.Errorf("annotation file %q: %w", key, err)
	}
	return points, nil
}

// Summary returns a one-line description of the painted classes and voxel counts.
func (r *Result) Summary() string {
	parts := make([]string, 0, len(r.Classes)+1)
	for _, cl := range r.Classes {
		parts = append(parts, fmt.Sprintf("%s %s points", humanize.Comma(int64(cl.Points)), cl.Class.Name))
	}
	values := make([]int64, 0, len(r.Counts))
	for v := range r.Counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	counts := make([]string, len(values))
	for i, v := range values {
		counts[i] = fmt.Sprintf("%d:%s", v, humanize.Comma(r.Counts[v]))
	}
	parts = append(parts, "voxels by label {"+strings.Join(counts, " ")+"}")
	return strings.Join(parts, ", ")
}
