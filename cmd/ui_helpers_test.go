package cmd

import (
	"testing"

	"zentaoctl/cli/internal/config"
	"zentaoctl/cli/internal/portal"
)

func TestMaskAccount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a", "*"},
		{"ab", "**"},
		{"admin", "a***n"},
		{"管理员甲", "管**甲"},
	}
	for _, tt := range tests {
		if got := maskAccount(tt.in); got != tt.want {
			t.Errorf("maskAccount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescribeQuery(t *testing.T) {
	tests := []struct {
		name string
		q    portal.Query
		want string
	}{
		{"by id", portal.Query{RecordID: " 42 ", AssignedTo: "张三", Solution: "全部"}, "BUG ID 42"},
		{"by condition", portal.Query{AssignedTo: "张三", Solution: "全部"}, "指派给 张三, 解决方案 全部"},
		{"unfiltered", portal.Query{AssignedTo: "张三"}, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeQuery(tt.q); got != tt.want {
				t.Errorf("describeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickOperator(t *testing.T) {
	cfg := config.Default()
	cfg.Operator = " 王五 "

	if got := pickOperator(queryCmd, "", cfg); got != "王五" {
		t.Errorf("pickOperator() without flag = %q, want %q", got, "王五")
	}

	if err := execCmd.Flags().Set("operator", "李四"); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = execCmd.Flags().Set("operator", "")
		execCmd.Flags().Lookup("operator").Changed = false
	}()
	if got := pickOperator(execCmd, execOperator, cfg); got != "李四" {
		t.Errorf("pickOperator() with flag = %q, want %q", got, "李四")
	}
}

func TestExitErrorMessage(t *testing.T) {
	if got := (&exitError{code: 2}).Error(); got != "exit status 2" {
		t.Errorf("exitError.Error() = %q", got)
	}
}

func TestApplyQueryFlagsKeepsRememberedID(t *testing.T) {
	last := portal.Query{ProjectName: "Apollo", AssignedTo: "张诗婉", Solution: "全部", RecordID: "31"}
	given := map[string]bool{}
	changed := func(name string) bool { return given[name] }

	if got := applyQueryFlags(last, changed); got != last {
		t.Errorf("applyQueryFlags() without flags = %+v, want %+v", got, last)
	}

	queryID, queryProject = "", "Gemini"
	defer func() { queryID, queryProject = "", "" }()
	given["id"], given["project"] = true, true
	want := portal.Query{ProjectName: "Gemini", AssignedTo: "张诗婉", Solution: "全部"}
	if got := applyQueryFlags(last, changed); got != want {
		t.Errorf("applyQueryFlags() = %+v, want %+v", got, want)
	}
}
