package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"autoPallet/errs"
	"autoPallet/models"
)

// ArtifactPath is where a run's stack is written under dir.
func ArtifactPath(dir, runID string) string {
	return filepath.Join(dir, runID+".json")
}

// WriteArtifact persists the placement records of one run as
// {"pallet_stack": [...]} and returns the file path.
func WriteArtifact(dir, runID string, records []models.BoxPlacement) (string, error) {
	if records == nil {
		records = []models.BoxPlacement{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(errs.CodeStorage, err, "create output dir")
	}

	data, err := json.MarshalIndent(models.Artifact{PalletStack: records}, "", "  ")
	if err != nil {
		return "", errs.Wrap(errs.CodeInternal, err, "marshal artifact")
	}

	path := ArtifactPath(dir, runID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errs.Wrap(errs.CodeStorage, err, "write artifact")
	}
	return path, nil
}

// ReadArtifact loads a previously written artifact.
func ReadArtifact(path string) (models.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Artifact{}, errs.New(errs.CodeNotFound, "artifact not found: %s", path)
		}
		return models.Artifact{}, errs.Wrap(errs.CodeStorage, err, "read artifact")
	}
	var a models.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return models.Artifact{}, errs.Wrap(errs.CodeStorage, err, "parse artifact")
	}
	return a, nil
}
