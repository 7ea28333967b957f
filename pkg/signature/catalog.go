package signature

// DefaultCatalog is the built-in list of script and dropper markers that have no business inside
// a media container. Entries are at least five bytes long so random payloads practically never
// trip them by accident.
var DefaultCatalog = []string{
	"<script",
	"<SCRIPT",
	"</script>",
	"javascript:",
	"vbscript:",
	"<?php",
	"eval(",
	"base64_decode(",
	"document.write(",
	"window.location",
	"ActiveXObject",
	"WScript.Shell",
	"powershell",
	"PowerShell",
	"cmd.exe",
	"#!/bin/sh",
	"#!/bin/bash",
	"/bin/sh -c",
	"<iframe",
	"onerror=",
	"onload=",
	"%SYSTEMROOT%",
	"CreateObject(",
	"Shell.Application",
}

// Default returns a [Set] built from [DefaultCatalog].
func Default() *Set {
	s, err := ParseSet(DefaultCatalog)
	if err != nil {
		// this should never happen
		panic(err)
	}
	return s
}
