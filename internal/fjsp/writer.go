package fjsp

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Write encodes inst in the format Parse reads. The third header token is the mean number of
// compatible machines per operation, as in the Brandimarte and Hurink benchmark files.
func Write(w io.Writer, inst *Instance) error {
	if err := inst.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(strconv.Itoa(inst.Jobs))
	bw.WriteByte(' ')
	bw.WriteString(strconv.Itoa(inst.Machines))
	bw.WriteByte(' ')
	bw.WriteString(strconv.FormatFloat(inst.Flexibility(), 'f', -1, 64))
	bw.WriteByte('\n')

	for j, tasks := range inst.JobTasks {
		bw.WriteString(strconv.Itoa(inst.Operations[j]))
		for _, t := range tasks {
			c := inst.Compatible(t)
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(len(c)))
			for _, m := range c {
				bw.WriteByte(' ')
				bw.WriteString(strconv.Itoa(m + 1))
				bw.WriteByte(' ')
				bw.WriteString(strconv.Itoa(inst.Time(t, m)))
			}
		}
		bw.WriteByte('\n')
	}
	return errors.WithStack(bw.Flush())
}
