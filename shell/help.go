package shell

import "io"

func usage(w io.Writer) {
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "size metric=<cr|epc> baseline=<rate or mean> [std=<s>] [mde=<rel>] [variants=<n>]\n")
	io.WriteString(w, "     [share=<control traffic share>] [power=<p>] [alpha=<a>]\n")
	io.WriteString(w, "   - required per-group sample sizes for a planned test\n")
	io.WriteString(w, "analyze metric=cr cn=<n> cconv=<k> vn=<n> vconv=<k> [variants=<n>] [alpha=<a>]\n")
	io.WriteString(w, "analyze metric=epc cn=<n> cmean=<m> cstd=<s> vn=<n> vmean=<m> vstd=<s> [variants=<n>] [alpha=<a>]\n")
	io.WriteString(w, "   - significance test for observed results\n")
	io.WriteString(w, "power <same arguments as size> [trials=<t>] [seed=<s>]\n")
	io.WriteString(w, "   - size the design, then verify its power by simulation\n")
	io.WriteString(w, "plan <path/to/plan.yaml> - size and analyze every experiment in a plan file\n")
	io.WriteString(w, "set <key> <value> - override a setting for this session\n")
	io.WriteString(w, "show - print effective settings\n")
	io.WriteString(w, "exit - leave the shell\n")
}
