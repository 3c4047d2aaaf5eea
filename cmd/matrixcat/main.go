// Command matrixcat loads a session manifest, assembles a data matrix
// over a requested time or sample slice, and writes it out as CSV. It
// mirrors the flag-parsed, progress-printing shape of the teacher's own
// example commands rather than reaching for a CLI framework the teacher
// never imports.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	_ "github.com/neurotsdb/tsarc/block/mbe"
	_ "github.com/neurotsdb/tsarc/block/pred"
	_ "github.com/neurotsdb/tsarc/block/red"
	_ "github.com/neurotsdb/tsarc/block/vds"

	"github.com/neurotsdb/tsarc/internal/telemetry"
	"github.com/neurotsdb/tsarc/matrix"
	"github.com/neurotsdb/tsarc/session"
)

func main() {
	log := telemetry.Default()

	manifestPath := flag.String("manifest", "", "path to session manifest JSON")
	sliceMode := flag.String("slice", "time", "slice mode: time|sample")
	start := flag.Int64("start", 0, "slice start (microseconds UTC or sample index)")
	end := flag.Int64("end", 0, "slice end (microseconds UTC or sample index)")
	extent := flag.String("extent", "sampfreq", "extent mode: sampcount|sampfreq|both")
	count := flag.Int("count", 0, "output sample count (extent=sampcount|both)")
	freq := flag.Float64("freq", 0, "output sampling frequency Hz (extent=sampfreq|both)")
	layout := flag.String("layout", "channel", "matrix layout: channel|sample")
	elemType := flag.String("type", "f64", "element type: si2|si4|f32|f64")
	filterMode := flag.String("filter", "none", "filter mode: none|antialias|lowpass|highpass|bandpass|bandstop")
	cutoffs := flag.String("cutoffs", "", "comma-separated filter cutoffs in Hz")
	resampleMode := flag.String("resample", "auto", "resample mode: auto|spline|linear|midpoint|mean|median")
	traceRange := flag.Bool("range", false, "include per-sample bin min/max range traces")
	detrend := flag.Bool("detrend", false, "apply least-absolute-deviations detrend")
	traceExtrema := flag.Bool("extrema", false, "include per-channel max/min traces")
	discontinuity := flag.String("discontinuity", "none", "discontinuity mode: none|contig|nan|zero")
	outPath := flag.String("out", "", "output CSV path (default stdout)")
	flag.Parse()

	fmt.Println("tsarc matrix assembler")
	fmt.Println(strings.Repeat("-", 70))

	path := *manifestPath
	if path == "" {
		path = getManifestPath()
	}
	if path == "" {
		fmt.Println("no manifest specified, exiting")
		return
	}

	fmt.Printf("manifest: %s\n", path)
	sess, err := loadSession(path)
	if err != nil {
		log.Error("load session: %v", err)
		os.Exit(1)
	}
	log.Info("session %s opened (%d channels, %d active)", sess.ID, len(sess.Channels), len(sess.ActiveChannels()))

	req, err := buildRequest(*sliceMode, *start, *end, *extent, *count, *freq, *layout, *elemType,
		*filterMode, *cutoffs, *resampleMode, *traceRange, *detrend, *traceExtrema, *discontinuity)
	if err != nil {
		log.Error("build request: %v", err)
		os.Exit(1)
	}

	fmt.Println("assembling matrix...")
	m, err := matrix.GetMatrix(context.Background(), sess, req)
	if m == nil && err != nil {
		log.Error("GetMatrix: %v", err)
		os.Exit(1)
	}
	if err != nil {
		if partial, ok := err.(*matrix.PartialMatrixError); ok {
			log.Warn("session %s: %d channel(s) failed: %v", sess.ID, len(partial.Errors), partial)
		} else {
			log.Error("GetMatrix: %v", err)
			os.Exit(1)
		}
	}

	fmt.Printf("matrix: %d channels x %d samples @ %.2f Hz\n", m.ChannelCount, m.SampleCount, m.SamplingFreq)

	if err := writeCSV(*outPath, m); err != nil {
		log.Error("write output: %v", err)
		os.Exit(1)
	}
	if *outPath != "" {
		fmt.Printf("wrote %s\n", *outPath)
	}
}

// getManifestPath falls back to interactive stdin input when no -manifest
// flag was given, the same fallback the teacher's own example commands use
// for a missing input path.
func getManifestPath() string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("enter manifest path: ")
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.Trim(input, "\"'"))
}

// manifestFile is the on-disk description of a session: one entry per
// channel, each listing its ordered segments. matrixcat's own format, not
// part of the archive's wire layout.
type manifestFile struct {
	ReferenceChannel string            `json:"reference_channel"`
	Channels         []manifestChannel `json:"channels"`
}

type manifestChannel struct {
	Name                   string            `json:"name"`
	Active                 bool              `json:"active"`
	SamplingFrequency      float64           `json:"sampling_frequency"`
	AmplitudeUnitsPerCount float64           `json:"amplitude_units_per_count"`
	ReferenceDescription   string            `json:"reference_description"`
	Segments               []manifestSegment `json:"segments"`
}

type manifestSegment struct {
	DataPath    string `json:"data_path"`
	IndexPath   string `json:"index_path"`
	StartTime   int64  `json:"start_time"`
	EndTime     int64  `json:"end_time"`
	StartSample int64  `json:"start_sample"`
	EndSample   int64  `json:"end_sample"`
}

// osOpener backs session.FileOpener with the local filesystem.
type osOpener struct{}

func (osOpener) Open(path string) (io.ReadSeeker, error) {
	return os.Open(path)
}

func loadSession(path string) (*session.Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf manifestFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, err
	}

	channels := make([]*session.Channel, len(mf.Channels))
	var reference *session.Channel
	for i, mc := range mf.Channels {
		segs := make([]*session.Segment, len(mc.Segments))
		for j, ms := range mc.Segments {
			segs[j] = &session.Segment{
				StartTime:   ms.StartTime,
				EndTime:     ms.EndTime,
				StartSample: ms.StartSample,
				EndSample:   ms.EndSample,
				DataPath:    ms.DataPath,
				IndexPath:   ms.IndexPath,
			}
		}
		ch := &session.Channel{
			Name:                   mc.Name,
			Active:                 mc.Active,
			Segments:               segs,
			SamplingFrequency:      mc.SamplingFrequency,
			AmplitudeUnitsPerCount: mc.AmplitudeUnitsPerCount,
			ReferenceDescription:   mc.ReferenceDescription,
		}
		channels[i] = ch
		if mc.Name == mf.ReferenceChannel {
			reference = ch
		}
	}

	return session.Open(channels, reference, osOpener{})
}

func buildRequest(sliceMode string, start, end int64, extent string, count int, freq float64,
	layout, elemType, filterMode, cutoffsStr, resampleMode string,
	traceRange, detrend, traceExtrema bool, discontinuity string) (matrix.Request, error) {

	slice := &session.Slice{StartTime: start, EndTime: end}
	switch sliceMode {
	case "time":
		slice.Mode = session.SliceByTime
	case "sample":
		slice.Mode = session.SliceBySample
		slice.StartSample, slice.EndSample = start, end
	default:
		return matrix.Request{}, fmt.Errorf("unknown slice mode %q", sliceMode)
	}

	req := matrix.Request{
		Slice:             slice,
		SampleCount:       count,
		SamplingFrequency: freq,
		TraceRange:        traceRange,
		Detrend:           detrend,
		TraceExtrema:      traceExtrema,
	}

	switch extent {
	case "sampcount":
		req.ExtentMode = matrix.ExtentSampCount
	case "sampfreq":
		req.ExtentMode = matrix.ExtentSampFreq
	case "both":
		req.ExtentMode = matrix.ExtentCountAndFreq
	default:
		return matrix.Request{}, fmt.Errorf("unknown extent mode %q", extent)
	}

	switch layout {
	case "channel":
		req.Layout = matrix.ChannelMajor
	case "sample":
		req.Layout = matrix.SampleMajor
	default:
		return matrix.Request{}, fmt.Errorf("unknown layout %q", layout)
	}

	switch elemType {
	case "si2":
		req.ElementType = matrix.Si2
	case "si4":
		req.ElementType = matrix.Si4
	case "f32":
		req.ElementType = matrix.F32
	case "f64":
		req.ElementType = matrix.F64
	default:
		return matrix.Request{}, fmt.Errorf("unknown element type %q", elemType)
	}

	switch filterMode {
	case "none":
		req.FilterMode = matrix.FilterNone
	case "antialias":
		req.FilterMode = matrix.FilterAntiAlias
	case "lowpass":
		req.FilterMode = matrix.FilterLowpass
	case "highpass":
		req.FilterMode = matrix.FilterHighpass
	case "bandpass":
		req.FilterMode = matrix.FilterBandpass
	case "bandstop":
		req.FilterMode = matrix.FilterBandstop
	default:
		return matrix.Request{}, fmt.Errorf("unknown filter mode %q", filterMode)
	}
	if cutoffsStr != "" {
		for _, part := range strings.Split(cutoffsStr, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return matrix.Request{}, fmt.Errorf("bad cutoff %q: %w", part, err)
			}
			req.Cutoffs = append(req.Cutoffs, v)
		}
	}

	switch resampleMode {
	case "auto":
		req.ResampleMode = matrix.ResampleAuto
	case "spline":
		req.ResampleMode = matrix.ResampleSpline
	case "linear":
		req.ResampleMode = matrix.ResampleLinear
	case "midpoint":
		req.ResampleMode = matrix.ResampleMidpoint
	case "mean":
		req.ResampleMode = matrix.ResampleMean
	case "median":
		req.ResampleMode = matrix.ResampleMedian
	default:
		return matrix.Request{}, fmt.Errorf("unknown resample mode %q", resampleMode)
	}

	switch discontinuity {
	case "none":
		req.DiscontinuityMode = matrix.DiscontinuityNone
	case "contig":
		req.DiscontinuityMode = matrix.DiscontinuityContig
	case "nan":
		req.DiscontinuityMode = matrix.DiscontinuityNaN
	case "zero":
		req.DiscontinuityMode = matrix.DiscontinuityZero
	default:
		return matrix.Request{}, fmt.Errorf("unknown discontinuity mode %q", discontinuity)
	}

	return req, nil
}

func writeCSV(path string, m *matrix.Matrix) error {
	var w *csv.Writer
	if path == "" {
		w = csv.NewWriter(os.Stdout)
	} else {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = csv.NewWriter(f)
	}
	defer w.Flush()

	if err := w.Write(m.Channels); err != nil {
		return err
	}
	row := make([]string, m.ChannelCount)
	for s := 0; s < m.SampleCount; s++ {
		for c := 0; c < m.ChannelCount; c++ {
			row[c] = formatCell(m, c, s)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatCell(m *matrix.Matrix, channel, sample int) string {
	i := channel*m.SampleCount + sample
	if m.Layout == matrix.SampleMajor {
		i = sample*m.ChannelCount + channel
	}
	switch m.Data.Type {
	case matrix.Si2:
		return strconv.Itoa(int(m.Data.Si2[i]))
	case matrix.Si4:
		return strconv.Itoa(int(m.Data.Si4[i]))
	case matrix.F32:
		return strconv.FormatFloat(float64(m.Data.F32[i]), 'g', -1, 32)
	case matrix.F64:
		return strconv.FormatFloat(m.Data.F64[i], 'g', -1, 64)
	default:
		return ""
	}
}
