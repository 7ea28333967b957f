package main

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/media"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
)

var (
	pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	jpgMagic = []byte{0xff, 0xd8, 0xff, 0xe0}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func writeFile(t *testing.T, dir, name string, parts ...[]byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Join(parts, nil), 0o644))
	return path
}

// mediaTree lays out one flagged, one clean and one non media file.
func mediaTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "evil.jpg", jpgMagic, []byte("JFIF\x00 <?php system($_GET['c']); ?>"))
	writeFile(t, dir, "holiday/beach.png", pngMagic, bytes.Repeat([]byte("IDAT"), 64))
	writeFile(t, dir, "notes.txt", []byte("<script>alert(1)</script>"))
	return dir
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "config.yaml", []byte("{}\n"))
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCsvSchemaHeader(t *testing.T) {
	csv := csvSchema{
		keys: map[int]csvHeaderStructMapping{
			0: {"filename", "name"},
			1: {"path", "path"},
		},
		delim: ",",
	}

	assert.Equal(t, "filename,path", string(csv.header()))
	assert.Equal(t,
		"filename,path,category,mime,size,verdict,reason,entropy,signature,md5,sha1,sha256,sha512",
		string(defCSVHeader.header()),
	)
}

func TestResultChecksums(t *testing.T) {
	dir := t.TempDir()
	content := []byte("yeeterson mcgee")
	path := writeFile(t, dir, "yeet", content)

	yeet := &File{
		Path:     path,
		Name:     "yeet",
		Category: "image",
		MIME:     "image/png",
		Size:     int64(len(content)),
		Verdict:  "flagged",
		Reason:   "high_entropy",
		Entropy:  0.5,
	}

	results := NewResults()
	results.Add(yeet)

	cfg := &config{threads: 2, hashers: []HashType{HashTypeMD5, HashTypeSHA1, HashTypeSHA256, HashTypeSHA512}}
	require.NoError(t, cfg.runEnabledHashers(scan.NewOSSource(dir), results.Files, quietLogger()))
	require.NotNil(t, yeet.Checksums)

	md5Sum := md5.Sum(content)
	sha256Sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(md5Sum[:]), yeet.Checksums.Get(HashTypeMD5))
	assert.Equal(t, hex.EncodeToString(sha256Sum[:]), yeet.Checksums.Get(HashTypeSHA256))
	for _, ht := range cfg.hashers {
		assert.NotEmpty(t, yeet.Checksums.Get(ht), ht.String())
	}

	expected := "filename,path,category,mime,size,verdict,reason,entropy,signature,md5,sha1,sha256,sha512\n" +
		"yeet," + path + ",image,image/png,15,flagged,high_entropy,0.50,," + yeet.Checksums.MD5 + "," +
		yeet.Checksums.SHA1 + "," + yeet.Checksums.SHA256 + "," + yeet.Checksums.SHA512 + "\n"

	result, err := results.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, expected, string(result))
}

func TestHashersSkipCleanFilesAndReportFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.png", pngMagic)

	clean := &File{Path: filepath.Join(dir, "clean.png"), Verdict: scan.Clean.String()}
	gone := &File{Path: filepath.Join(dir, "gone.png"), Verdict: scan.Flagged.String()}

	cfg := &config{threads: 4, hashers: []HashType{HashTypeMD5}}
	err := cfg.runEnabledHashers(scan.NewOSSource(dir), Files{clean, gone}, quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, clean.Checksums)
	assert.Nil(t, gone.Checksums)

	cfg.hashers = nil
	assert.NoError(t, cfg.runEnabledHashers(scan.NewOSSource(dir), Files{gone}, quietLogger()))
}

func TestMultiHasher(t *testing.T) {
	sums, err := NewMultiHasher(HashTypeMD5, HashTypeSHA1, HashTypeSHA256, HashTypeSHA512, HashTypeMD5).
		Hash(strings.NewReader("abc"))
	require.NoError(t, err)

	assert.Equal(t, map[HashType]string{
		HashTypeMD5:    "900150983cd24fb0d6963f7d28e17f72",
		HashTypeSHA1:   "a9993e364706816aba3e25717850c26c9cd0d89d",
		HashTypeSHA256: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		HashTypeSHA512: "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
			"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
	}, sums)

	_, err = NewMultiHasher().Hash(strings.NewReader("abc"))
	assert.ErrorIs(t, err, ErrNoHashTypes)

	_, err = NewMultiHasher(HashNull).Hash(strings.NewReader("abc"))
	assert.Error(t, err)

	assert.Equal(t, "sha256", HashTypeSHA256.String())
	assert.Equal(t, "HashType(42)", HashType(42).String())
}

func TestResultsCustomSchema(t *testing.T) {
	results := NewResults()
	results.Add(&File{
		Path:      "test/path",
		Name:      "testfile",
		Checksums: new(Checksums),
	})
	results.csvSchema = csvSchema{
		keys: map[int]csvHeaderStructMapping{
			0: {"filename", "name"},
			1: {"path", "path"},
		},
		delim: ";",
	}

	result, err := results.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "filename;path\ntestfile;test/path\n", string(result))
}

func TestParseKeepsColumnsAligned(t *testing.T) {
	results := NewResults()
	results.Add(&File{
		Path:      `media/a,b "c".png`,
		Name:      `a,b "c".png`,
		Verdict:   "flagged",
		Reason:    "signature",
		Signature: "<?php",
	})

	out, err := results.MarshalCSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		`"a,b ""c"".png","media/a,b ""c"".png",,,0,flagged,signature,0.00,<?php,,,,`,
		lines[1],
	)
}

type inline struct {
	Name  string  `json:"name"`
	Count uint16  `json:"count"`
	Ratio float32 `json:"ratio"`
	Ok    bool    `json:"ok"`
	Tags  []string
}

func TestParseTypes(t *testing.T) {
	schema := csvSchema{
		keys: map[int]csvHeaderStructMapping{
			0: {"name", "name"},
			1: {"count", "count"},
			2: {"ratio", "ratio"},
			3: {"ok", "ok"},
		},
		delim: "|",
	}

	out, err := schema.parse(inline{Name: "x", Count: 7, Ratio: 0.25, Ok: true})
	require.NoError(t, err)
	assert.Equal(t, "x|7|0.25|true\n", string(out))

	var nilFile *File
	_, err = schema.parse(nilFile)
	assert.ErrorIs(t, err, ErrNilPointer)

	_, err = schema.parse("not a struct")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	schema.keys[4] = csvHeaderStructMapping{"tags", "-"}
	out, err = schema.parse(&inline{Name: "y"})
	require.NoError(t, err)
	assert.Equal(t, "y|0|0.00|false|\n", string(out))
}

func TestResultsStatus(t *testing.T) {
	flagged := scan.Verdict{
		Path:      "/m/evil.jpg",
		Kind:      media.Kind{Category: media.Image, Extension: "jpg", MIME: "image/jpeg"},
		Outcome:   scan.Flagged,
		Reason:    scan.ReasonSignature,
		Signature: []byte("<?php"),
		Size:      42,
	}
	clean := scan.Verdict{
		Path:    "/m/ok.png",
		Kind:    media.Kind{Category: media.Image, Extension: "png", MIME: "image/png"},
		Outcome: scan.Clean,
		Entropy: 3.14159,
	}

	results := NewResults()
	results.Status(flagged)
	results.Status(clean)
	require.Len(t, results.Files, 1)

	f := results.Files[0]
	assert.Equal(t, "evil.jpg", f.Name)
	assert.Equal(t, "image", f.Category)
	assert.Equal(t, "image/jpeg", f.MIME)
	assert.Equal(t, "flagged", f.Verdict)
	assert.Equal(t, "signature", f.Reason)
	assert.Equal(t, "<?php", f.Signature)
	assert.EqualValues(t, 42, f.Size)

	all := NewResults().WithAll(true)
	all.Status(flagged)
	all.Status(clean)
	require.Len(t, all.Files, 2)
	assert.Equal(t, 3.14, all.Files[1].Entropy)
	assert.Empty(t, all.Files[1].Reason)
}

func TestResultsConcurrentAddAndSort(t *testing.T) {
	results := NewResults().WithAll(true)

	wg := new(sync.WaitGroup)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.Status(scan.Verdict{Path: filepath.Join("/m", string(rune('a'+i%26)), "f.png"), Outcome: scan.Clean})
		}()
	}
	wg.Wait()

	results.Sort()
	require.Len(t, results.Files, 100)
	for i := 1; i < len(results.Files); i++ {
		assert.LessOrEqual(t, results.Files[i-1].Path, results.Files[i].Path)
	}
}

func TestResultsJSONAndMarkdown(t *testing.T) {
	results := NewResults()
	results.Status(scan.Verdict{
		Path:      "/m/evil.jpg",
		Kind:      media.Kind{Category: media.Image, MIME: "image/jpeg"},
		Outcome:   scan.Flagged,
		Reason:    scan.ReasonSignature,
		Signature: []byte{0xde, 0xad, 0xbe, 0xef},
	})
	results.Summary(scan.Summary{Root: "/m", Files: 3, Flagged: 1, Duration: time.Second})

	data, err := json.Marshal(results)
	require.NoError(t, err)

	var decoded struct {
		Summary scan.Summary `json:"summary"`
		Files   []File       `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "/m", decoded.Summary.Root)
	assert.EqualValues(t, 1, decoded.Summary.Flagged)
	require.Len(t, decoded.Files, 1)
	assert.Equal(t, "hex:deadbeef", decoded.Files[0].Signature)
	assert.NotContains(t, string(data), "checksums")

	md, err := results.MarshalMarkdown()
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Media Scan Report")
	assert.Contains(t, string(md), "`/m/evil.jpg`")
	assert.Contains(t, string(md), "`hex:deadbeef`")

	empty, err := NewResults().MarshalMarkdown()
	require.NoError(t, err)
	assert.Contains(t, string(empty), "No detections.")
}

func TestDisplaySignature(t *testing.T) {
	assert.Equal(t, "", displaySignature(nil))
	assert.Equal(t, "<script", displaySignature([]byte("<script")))
	assert.Equal(t, "hex:0a3c3f", displaySignature([]byte("\n<?")))
}

func TestStatusReporter(t *testing.T) {
	buf := new(bytes.Buffer)
	r := newStatusReporter(slog.New(slog.NewTextHandler(buf, nil)), false)

	r.Status(scan.Verdict{Path: "/m/evil.jpg", Outcome: scan.Flagged, Reason: scan.ReasonSignature, Signature: []byte("<?php")})
	r.Status(scan.Verdict{Path: "/m/loud.png", Outcome: scan.Flagged, Reason: scan.ReasonHighEntropy, Entropy: 7.991})
	r.Status(scan.Verdict{Path: "/m/ok.png", Outcome: scan.Clean})
	r.Status(scan.Verdict{Path: "/m/skip.txt", Outcome: scan.Skipped})
	r.Summary(scan.Summary{Flagged: 2})

	out := buf.String()
	assert.Contains(t, out, "FLAGGED Script/signature found: evil.jpg")
	assert.Contains(t, out, "signature=<?php")
	assert.Contains(t, out, "FLAGGED High entropy: loud.png")
	assert.Contains(t, out, "entropy=7.99")
	assert.Contains(t, out, "CLEAN ok.png")
	assert.NotContains(t, out, "skip.txt")
	assert.Contains(t, out, "Scan completed. Detections found: 2")

	emoji := newStatusReporter(quietLogger(), true)
	assert.Equal(t, "❌   ", emoji.flagged)
	assert.Equal(t, "✔️   ", emoji.clean)
}

func TestConfigFile(t *testing.T) {
	dir := mediaTree(t)
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", []byte(
		"folder: "+dir+"\n"+
			"entropy_threshold: 7.5\n"+
			"threads: 4\n"+
			"max_size: 1048576\n"+
			"signatures:\n"+
			"  - \"<?php\"\n"+
			"  - \"hex:de ad be ef\"\n",
	))

	cfg := new(config)
	cmd := newRootCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--threads", "8"}))
	require.NoError(t, cfg.load(cmd))
	require.NoError(t, cfg.validateScan())

	assert.Equal(t, dir, cfg.folder)
	assert.Equal(t, 7.5, cfg.entropyThreshold)
	assert.Equal(t, 8, cfg.threads, "flags win over the configuration file")
	assert.EqualValues(t, 1048576, cfg.maxSize)
	assert.Equal(t, [][]byte{[]byte("<?php"), {0xde, 0xad, 0xbe, 0xef}}, cfg.signatures.Signatures())
	assert.Equal(t, []HashType{HashTypeMD5, HashTypeSHA1, HashTypeSHA256, HashTypeSHA512}, cfg.hashers)
	assert.Equal(t, scan.Config{Root: dir, EntropyThreshold: 7.5, Workers: 8}, cfg.scanConfig())
}

func TestConfigErrors(t *testing.T) {
	dir := mediaTree(t)
	empty := emptyConfig(t)

	for name, tc := range map[string]struct {
		file string
		args []string
		is   error
	}{
		"missing config file": {args: []string{"--config", filepath.Join(dir, "nope.yaml"), "-f", dir}, is: ErrConfigNotFound},
		"bad yaml":            {file: "threads: [", args: []string{"-f", dir}},
		"bad signature":       {file: "signatures: [\"hex:zz\"]", args: []string{"-f", dir}, is: ErrInvalidConfig},
		"threshold too high":  {args: []string{"--config", empty, "-f", dir, "-e", "8.5"}, is: ErrInvalidConfig},
		"threshold zero":      {args: []string{"--config", empty, "-f", dir, "-e", "0"}, is: ErrInvalidConfig},
		"no folder":           {args: []string{"--config", empty}, is: ErrInvalidConfig},
		"zero threads":        {args: []string{"--config", empty, "-f", dir, "-t", "0"}, is: ErrInvalidConfig},
		"folder is a file":    {args: []string{"--config", empty, "-f", filepath.Join(dir, "evil.jpg")}, is: ErrInvalidConfig},
		"unknown format":      {args: []string{"--config", empty, "-f", dir, "--format", "xml"}, is: ErrInvalidConfig},
		"output without file format": {
			args: []string{"--config", empty, "-f", dir, "--output", filepath.Join(t.TempDir(), "out")},
			is:   ErrInvalidConfig,
		},
		"ssh host without user": {args: []string{"--config", empty, "-f", "/srv", "--ssh-host", "h", "--ssh-pass", "x"}, is: ErrInvalidConfig},
		"ssh without auth":      {args: []string{"--config", empty, "-f", "/srv", "--ssh-host", "h", "--ssh-user", "u"}, is: ErrInvalidConfig},
	} {
		t.Run(name, func(t *testing.T) {
			args := tc.args
			if tc.file != "" {
				args = append([]string{"--config", writeFile(t, t.TempDir(), "c.yaml", []byte(tc.file))}, args...)
			}

			cfg := new(config)
			cmd := newRootCmd(cfg)
			require.NoError(t, cmd.ParseFlags(args))

			err := cfg.load(cmd)
			if err == nil {
				err = cfg.validateScan()
			}
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestRunScan(t *testing.T) {
	dir := mediaTree(t)
	cfgPath := emptyConfig(t)

	code, stdout, stderr := runCLI(t, "--config", cfgPath, "-f", dir, "-t", "3")
	assert.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "FLAGGED Script/signature found: evil.jpg")
	assert.Contains(t, stderr, "CLEAN beach.png")
	assert.NotContains(t, stderr, "notes.txt")
	assert.Contains(t, stderr, "Scan completed. Detections found: 1")

	code, _, _ = runCLI(t, "--config", cfgPath, "-f", dir, "--fail-on-detect")
	assert.Equal(t, exitDetections, code)

	code, _, stderr = runCLI(t, "--config", cfgPath, "-f", filepath.Join(dir, "holiday"), "--fail-on-detect")
	assert.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, "Detections found: 0")

	code, _, stderr = runCLI(t, "--config", cfgPath)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "--folder")
}

func TestRunScanVerbose(t *testing.T) {
	dir := mediaTree(t)

	code, _, stderr := runCLI(t, "--config", emptyConfig(t), "-f", dir, "-v", "--log-format", "json")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, `"msg":"skipped"`)
	assert.Contains(t, stderr, "notes.txt")
	assert.Contains(t, stderr, `"msg":"Scan completed. Detections found: 1"`)
}

func TestRunScanJSONOutput(t *testing.T) {
	dir := mediaTree(t)
	outFile := filepath.Join(t.TempDir(), "results.json")

	code, stdout, stderr := runCLI(t, "--config", emptyConfig(t), "-f", dir, "--format", "json", "--output", outFile, "--all")
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var decoded struct {
		Summary scan.Summary `json:"summary"`
		Files   []File       `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded.Summary.Files)
	assert.EqualValues(t, 1, decoded.Summary.Flagged)
	require.Len(t, decoded.Files, 2)

	evil, beach := decoded.Files[0], decoded.Files[1]
	assert.Equal(t, filepath.Join(dir, "evil.jpg"), evil.Path)
	assert.Equal(t, "flagged", evil.Verdict)
	assert.Equal(t, "signature", evil.Reason)
	assert.Equal(t, "<?php", evil.Signature)
	require.NotNil(t, evil.Checksums)
	assert.Len(t, evil.Checksums.SHA256, 64)

	assert.Equal(t, filepath.Join(dir, "holiday", "beach.png"), beach.Path)
	assert.Equal(t, "clean", beach.Verdict)
	assert.Nil(t, beach.Checksums)
}

func TestRunScanCSVAndMarkdown(t *testing.T) {
	dir := mediaTree(t)
	cfgPath := emptyConfig(t)

	code, stdout, stderr := runCLI(t, "--config", cfgPath, "-f", dir, "--format", "csv", "--delim", ";", "--md5=false", "--sha1=false", "--sha512=false")
	require.Equal(t, exitOK, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "filename;path;category"))
	fields := strings.Split(lines[1], ";")
	require.Len(t, fields, 13)
	assert.Equal(t, "evil.jpg", fields[0])
	assert.Empty(t, fields[9])
	assert.Len(t, fields[11], 64)

	code, stdout, stderr = runCLI(t, "--config", cfgPath, "-f", dir, "--format", "markdown")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "# Media Scan Report")
	assert.Contains(t, stdout, "evil.jpg")
}

func TestInspectCommand(t *testing.T) {
	dir := mediaTree(t)
	cfgPath := emptyConfig(t)
	evil := filepath.Join(dir, "evil.jpg")
	beach := filepath.Join(dir, "holiday", "beach.png")
	notes := filepath.Join(dir, "notes.txt")

	for _, mode := range [][]string{nil, {"--stream"}} {
		args := append([]string{"inspect", "--config", cfgPath}, mode...)
		args = append(args, evil, beach, notes)

		code, stdout, stderr := runCLI(t, args...)
		require.Equal(t, exitOK, code, stderr)

		blocks := strings.Split(strings.TrimSpace(stdout), "\n\n")
		require.Len(t, blocks, 3, stdout)

		assert.Contains(t, blocks[0], "filename: evil.jpg")
		assert.Contains(t, blocks[0], "mime: image/jpeg")
		assert.Contains(t, blocks[0], "verdict: flagged")
		assert.Contains(t, blocks[0], "reason: script/signature found")
		assert.Contains(t, blocks[0], "signature: <?php")

		assert.Contains(t, blocks[1], "category: image")
		assert.Contains(t, blocks[1], "verdict: clean")
		assert.Contains(t, blocks[1], "entropy: ")

		assert.Contains(t, blocks[2], "verdict: skipped")
		assert.Contains(t, blocks[2], scan.ErrUnrecognized.Error())
	}

	code, stdout, _ := runCLI(t, "inspect", "--config", cfgPath, "-e", "1.0", beach)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "reason: high entropy")

	code, stdout, _ = runCLI(t, "inspect", "--config", cfgPath, "--stream", "-e", "1.0", beach)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "reason: high entropy")

	code, _, _ = runCLI(t, "inspect", "--config", cfgPath)
	assert.Equal(t, exitFailure, code)
}

func TestSignaturesAndVersionCommands(t *testing.T) {
	code, stdout, stderr := runCLI(t, "signatures", "--config", emptyConfig(t))
	require.Equal(t, exitOK, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, "<script", lines[0])
	assert.Contains(t, lines, "<?php")

	custom := writeFile(t, t.TempDir(), "c.yaml", []byte("signatures: [\"hex:00ff00ff\", \"<%eval\"]\n"))
	code, stdout, stderr = runCLI(t, "signatures", "--config", custom)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "hex:00ff00ff\n<%eval\n", stdout)

	code, stdout, _ = runCLI(t, "version")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "sandfly-mediascan Version "+constVersion)
}

func TestChecksums(t *testing.T) {
	c := new(Checksums)
	c.Set(HashTypeSHA1, "abc")
	c.Set(HashNull, "ignored")
	c.Merge(map[HashType]string{HashTypeMD5: "123", HashType(99): "nope"})

	assert.Equal(t, "abc", c.Get(HashTypeSHA1))
	assert.Equal(t, "123", c.Get(HashTypeMD5))
	assert.Empty(t, c.Get(HashTypeSHA512))
	assert.Empty(t, c.Get(HashNull))
}
