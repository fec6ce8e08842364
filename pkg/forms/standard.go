package forms

import (
	"fmt"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

var (
	lecturer  = []workflow.Role{workflow.RoleLecturer}
	faculty   = []workflow.Role{workflow.RoleFacultyManager}
	office    = []workflow.Role{workflow.RoleResearchOffice}
	council   = []workflow.Role{workflow.RoleCouncil}
	secretary = []workflow.Role{workflow.RoleCouncilSecretary}
	board     = []workflow.Role{workflow.RoleBoard}
)

var (
	projectFields = []string{"ten_de_tai", "chu_nhiem"}
	meetingFields = []string{"ten_de_tai", "ten_chu_tich", "ten_thu_ky"}
)

var meetingDefaults = map[string]string{
	"vang_mat":           "0",
	"so_phieu_khong_dat": "0",
}

func registerStandardForms(r *Registry) error {
	standard := []Form{
		{ID: workflow.Form1b, Name: "Phiếu đề xuất", Description: "Phiếu đề xuất thực hiện đề tài",
			Phase: workflow.PhaseProposal, Required: []string{"ten_de_tai", "chu_nhiem", "khoa"},
			CreatedBy: lecturer, ApprovedBy: faculty},
		{ID: workflow.FormPL1, Name: "Đề cương chi tiết", Description: "Đề cương đề tài khoa học",
			Phase: workflow.PhaseProposal, Required: projectFields,
			CreatedBy: lecturer, ApprovedBy: faculty},
		{ID: workflow.Form2b, Name: "Phiếu đánh giá cấp Khoa", Description: "Phiếu đánh giá xét chọn",
			Phase: workflow.PhaseFacultyReview, Required: []string{"ten_de_tai"},
			CreatedBy: council, ApprovedBy: faculty, Outcome: true},
		{ID: workflow.Form3b, Name: "Biên bản họp cấp Khoa", Description: "Biên bản họp xét chọn cấp Khoa",
			Phase: workflow.PhaseFacultyReview, Required: meetingFields, Defaults: meetingDefaults,
			CreatedBy: secretary, ApprovedBy: faculty, Outcome: true,
			Processors: []formengine.PostProcessor{FacultyMinutesCleanup()}},
		{ID: workflow.Form4b, Name: "Danh mục tổng hợp", Description: "Danh mục tổng hợp kết quả xét chọn",
			Phase: workflow.PhaseFacultyReview, Required: []string{"ten_khoa", "danh_sach_de_tai"},
			CreatedBy: faculty, ApprovedBy: office,
			Rows: &RowInjection{Key: "danh_sach_de_tai", Columns: []string{"stt", "ten", "cn", "mt", "tm", "kq", "ud", "kp"}, CountKey: "so_de_tai"}},
		{ID: workflow.Form5b, Name: "Biên bản xét chọn sơ bộ", Description: "Biên bản xét chọn sơ bộ cấp Trường",
			Phase: workflow.PhaseSchoolSelection, Required: []string{"ten_de_tai"},
			CreatedBy: office, ApprovedBy: board, Outcome: true},
		{ID: workflow.Form6b, Name: "Biên bản Hội đồng tư vấn", Description: "Biên bản Hội đồng tư vấn xét chọn",
			Phase: workflow.PhaseCouncilReview, Required: meetingFields, Defaults: meetingDefaults,
			CreatedBy: secretary, ApprovedBy: council, Outcome: true,
			Processors: []formengine.PostProcessor{CouncilMinutesCleanup()}},
		{ID: workflow.Form7b, Name: "Báo cáo hoàn thiện đề cương", Description: "Báo cáo hoàn thiện đề cương",
			Phase: workflow.PhaseCouncilReview, Required: projectFields,
			CreatedBy: lecturer, ApprovedBy: office},
		{ID: workflow.Form8b, Name: "Đề nghị lập HĐ NT Khoa", Description: "Giấy đề nghị thành lập Hội đồng NT Khoa",
			Phase: workflow.PhaseFacultyAcceptance, Required: projectFields,
			CreatedBy: lecturer, ApprovedBy: faculty},
		{ID: workflow.Form9b, Name: "Phiếu đánh giá NT Khoa", Description: "Phiếu đánh giá nghiệm thu cấp Khoa",
			Phase: workflow.PhaseFacultyAcceptance, Required: []string{"ten_de_tai"},
			CreatedBy: council, ApprovedBy: faculty, Outcome: true},
		{ID: workflow.Form10b, Name: "Biên bản họp NT Khoa", Description: "Biên bản họp nghiệm thu cấp Khoa",
			Phase: workflow.PhaseFacultyAcceptance, Required: meetingFields, Defaults: meetingDefaults,
			CreatedBy: secretary, ApprovedBy: faculty, Outcome: true},
		{ID: workflow.Form11b, Name: "Báo cáo hoàn thiện NT Khoa", Description: "Báo cáo hoàn thiện hồ sơ NT Khoa",
			Phase: workflow.PhaseFacultyAcceptance, Required: projectFields,
			CreatedBy: lecturer, ApprovedBy: faculty},
		{ID: workflow.FormPL2, Name: "Báo cáo tổng kết", Description: "Báo cáo tổng kết đề tài",
			Phase: workflow.PhaseFacultyAcceptance, Required: projectFields,
			CreatedBy: lecturer, ApprovedBy: faculty},
		{ID: workflow.Form12b, Name: "Nhận xét phản biện", Description: "Nhận xét phản biện đề tài",
			Phase: workflow.PhaseSchoolAcceptance, Required: []string{"ten_de_tai"},
			CreatedBy: council, ApprovedBy: office},
		{ID: workflow.Form13b, Name: "Đề nghị lập HĐ NT Trường", Description: "Giấy đề nghị thành lập Hội đồng NT Trường",
			Phase: workflow.PhaseSchoolAcceptance, Required: []string{"ten_de_tai", "ten_chu_tich", "ten_thu_ky"},
			CreatedBy: lecturer, ApprovedBy: office,
			Rows: &RowInjection{Key: "hoi_dong_uy_vien", Columns: []string{"stt", "ho_ten", "don_vi"}}},
		{ID: workflow.Form14b, Name: "Phiếu đánh giá NT Trường", Description: "Phiếu đánh giá nghiệm thu cấp Trường",
			Phase: workflow.PhaseSchoolAcceptance, Required: []string{"ten_de_tai"},
			CreatedBy: council, ApprovedBy: board, Outcome: true},
		{ID: workflow.Form15b, Name: "Biên bản họp NT Trường", Description: "Biên bản họp nghiệm thu cấp Trường",
			Phase: workflow.PhaseSchoolAcceptance, Required: meetingFields, Defaults: meetingDefaults,
			CreatedBy: secretary, ApprovedBy: board, Outcome: true},
		{ID: workflow.Form16b, Name: "Báo cáo hoàn thiện NT Trường", Description: "Báo cáo hoàn thiện hồ sơ NT Trường",
			Phase: workflow.PhaseSchoolAcceptance, Required: projectFields,
			CreatedBy: lecturer, ApprovedBy: office},
		{ID: workflow.FormPL3, Name: "Nhận xét phản biện chi tiết", Description: "Bản nhận xét phản biện chi tiết",
			Phase: workflow.PhaseSchoolAcceptance, Required: []string{"ten_de_tai"},
			CreatedBy: council, ApprovedBy: office},
		{ID: workflow.Form17b, Name: "Biên bản giao nhận sản phẩm", Description: "Biên bản giao nhận sản phẩm",
			Phase: workflow.PhaseCompletion, Required: projectFields,
			CreatedBy: lecturer, ApprovedBy: office},
		{ID: workflow.Form18b, Name: "Đơn xin gia hạn", Description: "Đơn xin gia hạn thời gian thực hiện",
			Phase: workflow.PhaseImplementation, Required: append(append([]string(nil), projectFields...), "ly_do_gia_han"),
			CreatedBy: lecturer, ApprovedBy: office},
	}
	if err := registerForms(r, standard); err != nil {
		return err
	}

	states := map[workflow.State]StateForms{
		workflow.Draft: {
			Required: []workflow.FormID{workflow.Form1b},
			Optional: []workflow.FormID{workflow.FormPL1},
		},
		workflow.FacultyReview: {
			Required: []workflow.FormID{workflow.Form1b, workflow.FormPL1, workflow.Form2b, workflow.Form3b},
			Optional: []workflow.FormID{workflow.Form4b},
		},
		workflow.SchoolSelectionReview: {
			Required: []workflow.FormID{workflow.Form5b},
		},
		workflow.OutlineCouncilReview: {
			Required: []workflow.FormID{workflow.Form6b, workflow.Form7b},
		},
		workflow.InProgress: {
			Optional: []workflow.FormID{workflow.Form18b},
		},
		workflow.FacultyAcceptanceReview: {
			Required: []workflow.FormID{workflow.Form8b, workflow.Form9b, workflow.Form10b, workflow.Form11b, workflow.FormPL2},
		},
		workflow.SchoolAcceptanceReview: {
			Required: []workflow.FormID{workflow.Form12b, workflow.Form13b, workflow.Form14b, workflow.Form15b, workflow.Form16b},
			Optional: []workflow.FormID{workflow.FormPL3},
		},
		workflow.Handover: {
			Required: []workflow.FormID{workflow.Form17b},
		},
	}
	for s, sf := range states {
		if err := r.SetStateForms(s, sf); err != nil {
			return err
		}
	}
	return nil
}

// registerForms registers a static form list. Register replaces silently, so
// a repeated id in the list is reported here.
func registerForms(r *Registry, list []Form) error {
	seen := make(map[workflow.FormID]bool, len(list))
	for _, f := range list {
		if seen[f.ID] {
			return fmt.Errorf("form %q is listed twice", f.ID)
		}
		seen[f.ID] = true
		if err := r.Register(f); err != nil {
			return err
		}
	}
	return nil
}
