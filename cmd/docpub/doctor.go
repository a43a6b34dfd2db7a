package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Tools    []toolInfo `json:"tools"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds detection results for one external binary.
type toolInfo struct {
	Name     string `json:"name"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Required bool   `json:"required"`
}

// systemInfo holds system check results.
type systemInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	TempWritable bool   `json:"temp_writable"`
}

// doctorTools lists the external binaries the pipeline can invoke. Only
// pandoc is required; the others have configurable substitutes.
var doctorTools = []struct {
	name     string
	required bool
}{
	{name: "pandoc", required: true},
	{name: "prettier", required: false},
	{name: "wkhtmltopdf", required: false},
}

// runDoctorCmd executes the doctor subcommand and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor()

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor() *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	for _, tool := range doctorTools {
		info := checkTool(tool.name, tool.required)
		result.Tools = append(result.Tools, info)
		if !info.Found {
			msg := fmt.Sprintf("%s not found on PATH", tool.name)
			if tool.required {
				result.Errors = append(result.Errors, msg)
			} else {
				result.Warnings = append(result.Warnings, msg)
			}
		}
	}

	result.System.TempWritable = checkTempWritable()
	if !result.System.TempWritable {
		result.Errors = append(result.Errors, "temp directory is not writable")
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkTool locates an external binary and captures its version banner.
func checkTool(name string, required bool) toolInfo {
	info := toolInfo{Name: name, Required: required}

	path, err := exec.LookPath(name)
	if err != nil {
		return info
	}
	info.Found = true
	info.Path = path

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- fixed tool name from PATH lookup
	if err == nil {
		if lines := strings.SplitN(strings.TrimSpace(string(out)), "\n", 2); len(lines) > 0 {
			info.Version = lines[0]
		}
	}
	return info
}

// checkTempWritable verifies a temp file can be created.
func checkTempWritable() bool {
	f, err := os.CreateTemp("", "docpub-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// printDoctorResult writes a human-readable diagnostic report.
func printDoctorResult(env *Environment, result *doctorResult) {
	fmt.Fprintf(env.Stdout, "docpub doctor (%s/%s)\n\n", result.System.OS, result.System.Arch)
	for _, tool := range result.Tools {
		status := "MISSING"
		if tool.Found {
			status = tool.Path
			if tool.Version != "" {
				status += " (" + tool.Version + ")"
			}
		}
		fmt.Fprintf(env.Stdout, "  %-12s %s\n", tool.Name, status)
	}
	fmt.Fprintf(env.Stdout, "  %-12s %t\n\n", "temp dir", result.System.TempWritable)

	for _, w := range result.Warnings {
		fmt.Fprintf(env.Stdout, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(env.Stdout, "error: %s\n", e)
	}
	fmt.Fprintf(env.Stdout, "status: %s\n", result.Status)
}
