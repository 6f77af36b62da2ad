package station

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadMeta_ParsesSegments(t *testing.T) {
	path := writeTemp(t, "meta.csv",
		"지점,지점명,시작일,종료일,위도,경도\n"+
			"108,서울,1907-10-01,,37.5714,126.9658\n"+
			"174,순천,2011-04-01,,34.9434,127.5317\n")

	raw, err := LoadMeta(path)
	require.NoError(t, err)
	require.Len(t, raw, 2)

	assert.Equal(t, 108, raw[0].StationID)
	assert.Equal(t, "서울", raw[0].Name)
	assert.Equal(t, day(1907, 10, 1), raw[0].Start)
	assert.True(t, raw[0].End.IsZero(), "missing end date stays zero for Resolve to default")
	assert.Equal(t, 126.9658, raw[0].Lon)
}

func TestLoadMeta_DropsMalformedRows(t *testing.T) {
	path := writeTemp(t, "meta.csv",
		"지점,지점명,시작일,종료일,위도,경도\n"+
			"abc,서울,,,37.5,126.9\n"+ // bad id
			"108,서울,,,n/a,126.9\n"+ // bad latitude
			"119,수원,,,37.27,126.98\n")

	raw, err := LoadMeta(path)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, 119, raw[0].StationID)
}

func TestLoadMeta_MissingColumnsFatal(t *testing.T) {
	path := writeTemp(t, "meta.csv", "지점,지점명\n108,서울\n")

	_, err := LoadMeta(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "위도")
	assert.Contains(t, err.Error(), "종료일")
}

func TestLoadObservations_WindowFilterAndNilValues(t *testing.T) {
	path := writeTemp(t, "sun.csv",
		"지점,일시,합계 일조시간(hr)\n"+
			"108,2007-05-31,4.0\n"+ // before window
			"108,2007-06-01,5.5\n"+
			"108,2007-06-02,\n"+ // absent measurement
			"108,2011-09-01,2.0\n") // after window

	obs, err := LoadObservations(path, wStart, wEnd)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	require.NotNil(t, obs[0].Value)
	assert.Equal(t, 5.5, *obs[0].Value)
	assert.Nil(t, obs[1].Value, "absent measurement is preserved as nil, never zero")
}

func TestLoadObservations_EmptyWindowFatal(t *testing.T) {
	path := writeTemp(t, "sun.csv", "지점,일시,합계 일조시간(hr)\n108,2000-01-01,3.0\n")

	_, err := LoadObservations(path, wStart, wEnd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no observations")
}

func TestParseDate_Layouts(t *testing.T) {
	for _, s := range []string{"2008-03-01", "2008/03/01", "2008.03.01", "2008-03-01 00:00:00"} {
		got, ok := parseDate(s)
		require.True(t, ok, s)
		assert.Equal(t, day(2008, 3, 1), got)
	}
	_, ok := parseDate("notadate")
	assert.False(t, ok)
	_, ok = parseDate("")
	assert.False(t, ok)
}
