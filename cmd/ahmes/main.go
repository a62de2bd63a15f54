// ahmes compiles hierarchical physically-scaled geometry into GWL
// control scripts for a direct-laser-writing instrument. It reads a job
// definition file, slices and hatches every declared structure, compiles
// the per-structure scripts, and sequences them into job and multi-job
// scripts the instrument can run.
//
// Usage:
//
//	ahmes -config jobs.cfg [options]
//
// Options:
//
//	-config string   Job definition file (required)
//	-out string      Output directory (overrides [output] directory)
//	-logfile string  Log file path (default: stderr)
//	-trace           Enable debug tracing
//	-upload string   Serial device to stream the top-level script to
//	-baud int        Baud rate for -upload (default 115200)
//	-monitor string  Address for the compile monitor server (e.g. :7130)
//
// Examples:
//
//	# Compile everything declared in jobs.cfg
//	ahmes -config jobs.cfg
//
//	# Compile and push the result to the instrument controller
//	ahmes -config jobs.cfg -upload /dev/ttyACM0
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ahmes-go/pkg/config"
	"ahmes-go/pkg/geometry"
	"ahmes-go/pkg/gwl"
	"ahmes-go/pkg/log"
	"ahmes-go/pkg/monitor"
	"ahmes-go/pkg/serial"
)

func main() {
	configFile := flag.String("config", "", "Job definition file (required)")
	outDir := flag.String("out", "", "Output directory (overrides [output] directory)")
	logFile := flag.String("logfile", "", "Log file path (default: stderr)")
	trace := flag.Bool("trace", false, "Enable debug tracing")
	uploadDev := flag.String("upload", "", "Serial device to stream the top-level script to")
	baud := flag.Int("baud", 115200, "Baud rate for -upload")
	monitorAddr := flag.String("monitor", "", "Address for the compile monitor server")

	flag.Parse()

	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -config is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if *trace {
		log.Default().SetLevel(log.DEBUG)
	}
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.Default().SetWriter(f)
		log.Default().SetColorize(false)
	}
	// Child loggers copy settings, so derive after redirecting output.
	logger := log.Default().WithPrefix("ahmes")

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to read config: %v", err)
		os.Exit(1)
	}
	jobs, err := config.LoadJobs(cfg)
	if err != nil {
		logger.Error("invalid job definition: %v", err)
		os.Exit(1)
	}

	dir := jobs.OutputDir
	if *outDir != "" {
		dir = *outDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create output directory: %v", err)
		os.Exit(1)
	}

	var mon *monitor.Server
	if *monitorAddr != "" {
		mon = monitor.New(*monitorAddr)
		go func() {
			if err := mon.Start(); err != nil {
				logger.Error("monitor server: %v", err)
			}
		}()
		defer mon.Stop()
	}
	publish := func(ev monitor.Event) {
		if mon != nil {
			mon.Publish(ev)
		}
	}

	logger.Info("compiling %d scripts, %d jobs from %s", len(jobs.Scripts), len(jobs.Jobs), *configFile)
	publish(monitor.Event{Type: monitor.EventCompileStart, Name: filepath.Base(*configFile)})

	// Compile every declared structure into its own script.
	records := make(map[string]*gwl.CompiledScript, len(jobs.Scripts))
	for _, spec := range jobs.Scripts {
		block, err := geometry.SliceBox(spec.Origin, spec.Rotation,
			spec.Width, spec.Height, spec.Depth,
			spec.HatchSpacing, spec.LayerHeight, spec.HatchAngleStep)
		if err != nil {
			fail(logger, publish, "script %s: %v", spec.Name, err)
		}

		name := spec.Name + ".gwl"
		path := filepath.Join(dir, name)
		rec, err := gwl.Compile(path, spec.Power, spec.Speed, block)
		if err != nil {
			fail(logger, publish, "script %s: %v", spec.Name, err)
		}
		// Job files land in the same directory, so includes use bare names.
		records[spec.Name] = rec.WithFile(name)

		d := rec.Displacement()
		logger.Debug("script %s: displacement (%s, %s, %s)", spec.Name,
			fmtUm(d.X.Micrometers()), fmtUm(d.Y.Micrometers()), fmtUm(d.Z.Micrometers()))
		logger.Info("compiled %s -> %s", spec.Name, path)
		publish(monitor.Event{Type: monitor.EventScriptDone, Name: spec.Name, File: path})
	}

	// Sequence jobs over the compiled records.
	sequenced := make(map[string]*gwl.Job, len(jobs.Jobs))
	var lastOutput string
	for _, spec := range jobs.Jobs {
		scripts := make([]*gwl.CompiledScript, 0, len(spec.Scripts))
		for _, name := range spec.Scripts {
			scripts = append(scripts, records[name])
		}

		name := spec.Name + "_job.gwl"
		path := filepath.Join(dir, name)
		job, err := gwl.SequenceJob(path, spec.StageVelocity, spec.InterfaceAt, scripts...)
		if err != nil {
			fail(logger, publish, "job %s: %v", spec.Name, err)
		}
		sequenced[spec.Name] = job.WithFile(name)
		lastOutput = path

		logger.Info("sequenced job %s -> %s (%d scripts)", spec.Name, path, len(scripts))
		publish(monitor.Event{Type: monitor.EventJobDone, Name: spec.Name, File: path})
	}

	// Sequence the multi-job if one is declared.
	if jobs.MultiJob != nil {
		placements := make([]gwl.Placement, 0, len(jobs.MultiJob.Placements))
		for _, p := range jobs.MultiJob.Placements {
			placements = append(placements, gwl.Placement{
				X:   p.X,
				Y:   p.Y,
				Job: sequenced[p.Job],
			})
		}

		path := filepath.Join(dir, "multijob.gwl")
		if err := gwl.SequenceMultiJob(path, jobs.MultiJob.StageVelocity, placements...); err != nil {
			fail(logger, publish, "multijob: %v", err)
		}
		lastOutput = path

		logger.Info("sequenced multijob -> %s (%d placements)", path, len(placements))
		publish(monitor.Event{Type: monitor.EventMultiJobDone, File: path})
	}

	warnUnusedOptions(logger, cfg)

	if *uploadDev != "" {
		if lastOutput == "" {
			logger.Error("nothing to upload: no job or multijob declared")
			os.Exit(1)
		}
		if err := upload(logger, publish, *uploadDev, *baud, lastOutput); err != nil {
			fail(logger, publish, "upload: %v", err)
		}
	}

	logger.Info("done")
}

// fail logs the error, publishes it to the monitor, and exits.
func fail(logger *log.Logger, publish func(monitor.Event), format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("%s", msg)
	publish(monitor.Event{Type: monitor.EventError, Detail: msg})
	os.Exit(1)
}

// upload streams the top-level script to the instrument controller.
func upload(logger *log.Logger, publish func(monitor.Event), device string, baud int, path string) error {
	cfg := serial.DefaultConfig()
	cfg.Device = device
	cfg.BaudRate = baud

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	logger.Info("uploading %s to %s at %d baud", path, device, baud)
	return serial.Upload(port, path, func(sent, total int64) {
		publish(monitor.Event{
			Type:   monitor.EventUpload,
			File:   path,
			Detail: fmt.Sprintf("%d/%d bytes", sent, total),
		})
	})
}

// warnUnusedOptions reports config options no loader ever read, which
// usually means a misspelled key.
func warnUnusedOptions(logger *log.Logger, cfg *config.Config) {
	for _, name := range cfg.SectionNames() {
		section, err := cfg.GetSection(name)
		if err != nil {
			continue
		}
		for _, opt := range section.GetUnusedOptions() {
			logger.Warn("option '%s' in section [%s] was not used", opt, name)
		}
	}
}

func fmtUm(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".") + " um"
}
