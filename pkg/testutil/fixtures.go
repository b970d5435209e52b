package testutil

import (
	"fmt"
	"strings"
)

// NvidiaNimPath is the target of the built-in configuration
const NvidiaNimPath = "nodes/NvidiaNim/NvidiaNim.node.ts"

// NvidiaNimBaseURL is the line the built-in rules insert before each url
const NvidiaNimBaseURL = "baseURL: (await this.getCredentials('nvidiaNimApi')).baseUrl as string,"

// NvidiaNimCalls are the method and url of every call site the built-in
// rules patch, in file order
var NvidiaNimCalls = [][2]string{
	{"POST", "/chat/completions"},
	{"POST", "/completions"},
	{"POST", "/embeddings"},
	{"GET", "/models"},
}

func nvidiaNimCall(method, url string, patched bool) string {
	var b strings.Builder
	b.WriteString("\t\t\t\t// Make API request\n")
	b.WriteString("\t\t\t\tresponseData = await this.helpers.requestWithAuthentication.call(\n")
	b.WriteString("\t\t\t\t\tthis,\n")
	b.WriteString("\t\t\t\t\t'nvidiaNimApi',\n")
	b.WriteString("\t\t\t\t\t{\n")
	fmt.Fprintf(&b, "\t\t\t\t\t\tmethod: '%s',\n", method)
	if patched {
		// The replacement indents with five tabs
		fmt.Fprintf(&b, "\t\t\t\t\t%s\n\t\t\t\t\turl: '%s',\n", NvidiaNimBaseURL, url)
	} else {
		fmt.Fprintf(&b, "\t\t\t\t\t\turl: '%s',\n", url)
	}
	b.WriteString("\t\t\t\t\t\tjson: true,\n")
	b.WriteString("\t\t\t\t\t},\n")
	b.WriteString("\t\t\t\t);\n")
	return b.String()
}

func nvidiaNimSource(patched bool) string {
	var b strings.Builder
	b.WriteString("import type { IExecuteFunctions } from 'n8n-workflow';\n\n")
	b.WriteString("export class NvidiaNim {\n")
	b.WriteString("\tasync execute(this: IExecuteFunctions) {\n")
	b.WriteString("\t\tlet responseData;\n")
	for i, call := range NvidiaNimCalls {
		fmt.Fprintf(&b, "\t\tif (operation === 'op%d') {\n", i+1)
		b.WriteString(nvidiaNimCall(call[0], call[1], patched))
		b.WriteString("\t\t}\n")
	}
	b.WriteString("\t\treturn responseData;\n")
	b.WriteString("\t}\n")
	b.WriteString("}\n")
	return b.String()
}

// NvidiaNimSource returns a node source with every call site unpatched
func NvidiaNimSource() string {
	return nvidiaNimSource(false)
}

// NvidiaNimPatched returns NvidiaNimSource as the built-in rules leave it
func NvidiaNimPatched() string {
	return nvidiaNimSource(true)
}
