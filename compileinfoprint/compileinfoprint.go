// compileinfoprint is imported by the commands for the side effect of
// printing the compileinfo to os.Stderr before any record is processed.
package compileinfoprint

import "github.com/carbocation/qrsdetect/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
