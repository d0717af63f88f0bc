// countpair counts the reads in both mates of a paired-end FASTQ pair
// concurrently and exits nonzero when the counts differ. Inputs may be
// plain or compressed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"code.cloudfoundry.org/bytefmt"

	"github.com/bioqc/fqprep"
	_ "github.com/bioqc/fqprep/compileinfoprint"
	"github.com/bioqc/fqprep/fastq"
)

func main() {
	quiet := flag.Bool("q", false, "Only print the two counts, without log output.")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		log.Fatalln("Usage: countpair <mate1.fastq[.gz]> <mate2.fastq[.gz]>")
	}

	fastq1, fastq2 := fqprep.ExpandHome(args[0]), fqprep.ExpandHome(args[1])

	if !*quiet {
		for _, path := range []string{fastq1, fastq2} {
			log.Printf("Input %s (%s)\n", path, bytefmt.ByteSize(uint64(fqprep.FileSize(path))))
		}
	}

	n1, n2, err := fastq.CountPair(fastq1, fastq2)
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Printf("%s\t%d\n", fastq1, n1)
	fmt.Printf("%s\t%d\n", fastq2, n2)

	if n1 != n2 {
		log.Printf("Mate read counts differ: %d vs %d\n", n1, n2)
		os.Exit(1)
	}

	if !*quiet {
		log.Printf("Mates agree: %d reads per file\n", n1)
	}
}
