package util

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

// HashTables creates an MD5 fingerprint over normalized snapshot and age tables, in order.
// Two generations built from identical provider payloads hash identically.
func HashTables(snapshots []model.StateSnapshot, ages []model.AgeGroupDeathRecord) string {
	builder := strings.Builder{}
	for _, s := range snapshots {
		fmt.Fprintf(&builder, "%s|%s|%d|%d|%d|%d\n",
			s.Country, s.Region, s.Confirmed, s.Deaths, s.Recovered, s.LastUpdate.UnixMilli())
	}
	builder.WriteString("--\n")
	for _, a := range ages {
		builder.WriteString(a.State)
		builder.WriteString("|")
		builder.WriteString(a.AgeGroup)
		builder.WriteString("|")
		builder.WriteString(strconv.FormatFloat(a.Deaths, 'g', -1, 64))
		builder.WriteString("\n")
	}
	return hashString(builder.String())
}

func hashString(input string) string {
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}
