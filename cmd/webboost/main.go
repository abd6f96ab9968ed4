// Package main provides the entry point for the webboost CLI.
//
// webboost audits a web page in a headless mobile browser and reports its
// ad density, Recipe schema markup and word count.
//
// Usage:
//
//	webboost serve
//	webboost audit <url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
