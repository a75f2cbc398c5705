// Package doctor checks the environment the install pipeline depends
// on: external tools, the install root, and the active binary.
package doctor

import (
	"os"
	"os/exec"
	"path/filepath"

	"mvm/internal/store"
)

type Finding struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Report struct {
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
}

type Service struct {
	Store *store.Store
}

// Run collects findings. tar is required (binary installs cannot work
// without it); scons is only warned about since it matters solely for
// source builds.
func (s *Service) Run() Report {
	var findings []Finding

	if _, err := exec.LookPath("tar"); err != nil {
		findings = append(findings, Finding{Code: "DOC_NO_TAR", Level: "error", Message: "tar not found on PATH; downloads cannot be extracted"})
	}
	if _, err := exec.LookPath("scons"); err != nil {
		findings = append(findings, Finding{Code: "DOC_NO_SCONS", Level: "warn", Message: "scons not found on PATH; source builds are unavailable"})
	}

	if err := s.Store.EnsureLayout(); err != nil {
		findings = append(findings, Finding{Code: "DOC_ROOT", Level: "error", Message: "install root not writable: " + err.Error()})
	}

	if _, err := os.Lstat(store.CurrentLink(s.Store.Root)); err == nil {
		if _, ok := s.Store.Active(); !ok {
			findings = append(findings, Finding{Code: "DOC_ACTIVE", Level: "warn", Message: "current link exists but " + filepath.Join(store.BinRoot(s.Store.Root), "mongod") + " does not report a version"})
		}
	}

	healthy := true
	for _, f := range findings {
		if f.Level == "error" {
			healthy = false
		}
	}
	return Report{Healthy: healthy, Findings: findings}
}
