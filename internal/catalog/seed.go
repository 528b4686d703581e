package catalog

// SeedMappings returns the bundled reference rows: a representative slice of
// the CMS-HCC model covering the condition families the extractor recognizes,
// including deliberately ineligible "without complications" codes so callers
// can surface better-paying alternatives.
func SeedMappings() []Mapping {
	return []Mapping{
		// Diabetes: the unspecified codes carry no HCC weight, the
		// complication codes do.
		{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications", Category: NoCategory, RAF: 0, AnnualImpactDollar: 0},
		{Code: "E10.9", Description: "Type 1 diabetes mellitus without complications", Category: NoCategory, RAF: 0, AnnualImpactDollar: 0},
		{Code: "E11.22", Description: "Type 2 diabetes mellitus with diabetic chronic kidney disease", Category: "HCC 18", RAF: 0.302, AnnualImpactDollar: 5134},
		{Code: "E11.51", Description: "Type 2 diabetes mellitus with diabetic peripheral angiopathy without gangrene", Category: "HCC 18", RAF: 0.302, AnnualImpactDollar: 5134},
		{Code: "E11.52", Description: "Type 2 diabetes mellitus with diabetic peripheral angiopathy with gangrene", Category: "HCC 18", RAF: 0.302, AnnualImpactDollar: 5134},
		{Code: "E11.40", Description: "Type 2 diabetes mellitus with diabetic neuropathy, unspecified", Category: "HCC 18", RAF: 0.302, AnnualImpactDollar: 5134},
		{Code: "E11.65", Description: "Type 2 diabetes mellitus with hyperglycemia", Category: "HCC 19", RAF: 0.104, AnnualImpactDollar: 1768},
		{Code: "E11.319", Description: "Type 2 diabetes mellitus with unspecified diabetic retinopathy without macular edema", Category: "HCC 18", RAF: 0.302, AnnualImpactDollar: 5134},

		// Ischemic heart disease and infarction.
		{Code: "I25.9", Description: "Chronic ischemic heart disease, unspecified", Category: "HCC 86", RAF: 0.273, AnnualImpactDollar: 4641},
		{Code: "I25.10", Description: "Atherosclerotic heart disease of native coronary artery without angina pectoris", Category: "HCC 86", RAF: 0.273, AnnualImpactDollar: 4641},
		{Code: "I21.9", Description: "Acute myocardial infarction, unspecified", Category: "HCC 86", RAF: 0.273, AnnualImpactDollar: 4641},
		{Code: "I25.2", Description: "Old myocardial infarction", Category: "HCC 86", RAF: 0.273, AnnualImpactDollar: 4641},
		{Code: "I21.01", Description: "ST elevation (STEMI) myocardial infarction involving left main coronary artery", Category: "HCC 86", RAF: 0.273, AnnualImpactDollar: 4641},

		// Heart failure, the higher-value family.
		{Code: "I50.9", Description: "Heart failure, unspecified", Category: "HCC 85", RAF: 0.323, AnnualImpactDollar: 5491},
		{Code: "I50.1", Description: "Left ventricular failure, unspecified", Category: "HCC 85", RAF: 0.323, AnnualImpactDollar: 5491},
		{Code: "I50.20", Description: "Unspecified systolic (congestive) heart failure", Category: "HCC 85", RAF: 0.323, AnnualImpactDollar: 5491},
		{Code: "I50.22", Description: "Chronic systolic (congestive) heart failure", Category: "HCC 85", RAF: 0.323, AnnualImpactDollar: 5491},
		{Code: "I50.30", Description: "Unspecified diastolic (congestive) heart failure", Category: "HCC 85", RAF: 0.323, AnnualImpactDollar: 5491},
		{Code: "I50.32", Description: "Chronic diastolic (congestive) heart failure", Category: "HCC 85", RAF: 0.323, AnnualImpactDollar: 5491},
		{Code: "I50.40", Description: "Unspecified combined systolic and diastolic heart failure", Category: "HCC 85", RAF: 0.323, AnnualImpactDollar: 5491},
		{Code: "I11.0", Description: "Hypertensive heart disease with heart failure", Category: "HCC 85", RAF: 0.323, AnnualImpactDollar: 5491},

		// Kidney disease by stage. Stages 1-2 map to an HCC but carry no RAF.
		{Code: "N28.9", Description: "Disorder of kidney and ureter, unspecified", Category: NoCategory, RAF: 0, AnnualImpactDollar: 0},
		{Code: "N18.1", Description: "Chronic kidney disease, stage 1", Category: "HCC 139", RAF: 0, AnnualImpactDollar: 0},
		{Code: "N18.2", Description: "Chronic kidney disease, stage 2 (mild)", Category: "HCC 139", RAF: 0, AnnualImpactDollar: 0},
		{Code: "N18.3", Description: "Chronic kidney disease, stage 3 (moderate)", Category: "HCC 138", RAF: 0.287, AnnualImpactDollar: 4879},
		{Code: "N18.4", Description: "Chronic kidney disease, stage 4 (severe)", Category: "HCC 137", RAF: 0.398, AnnualImpactDollar: 6766},
		{Code: "N18.5", Description: "Chronic kidney disease, stage 5 (severe)", Category: "HCC 136", RAF: 0.675, AnnualImpactDollar: 11475},
		{Code: "N18.6", Description: "End stage renal disease", Category: "HCC 134", RAF: 0.675, AnnualImpactDollar: 11475},
		{Code: "Z94.0", Description: "Kidney transplant status", Category: "HCC 134", RAF: 0.525, AnnualImpactDollar: 8925},
		{Code: "Z99.2", Description: "Dependence on renal dialysis", Category: "HCC 134", RAF: 0.525, AnnualImpactDollar: 8925},

		// Depression.
		{Code: "F32.9", Description: "Major depressive disorder, single episode, unspecified", Category: "HCC 155", RAF: 0.309, AnnualImpactDollar: 5253},
		{Code: "F32.1", Description: "Major depressive disorder, single episode, moderate", Category: "HCC 155", RAF: 0.309, AnnualImpactDollar: 5253},
		{Code: "F32.2", Description: "Major depressive disorder, single episode, severe without psychotic features", Category: "HCC 154", RAF: 0.331, AnnualImpactDollar: 5627},
		{Code: "F33.1", Description: "Major depressive disorder, recurrent, moderate", Category: "HCC 155", RAF: 0.309, AnnualImpactDollar: 5253},
		{Code: "F33.2", Description: "Major depressive disorder, recurrent severe without psychotic features", Category: "HCC 154", RAF: 0.331, AnnualImpactDollar: 5627},

		// COPD.
		{Code: "J44.0", Description: "Chronic obstructive pulmonary disease with acute lower respiratory infection", Category: "HCC 111", RAF: 0.328, AnnualImpactDollar: 5576},
		{Code: "J44.1", Description: "Chronic obstructive pulmonary disease with (acute) exacerbation", Category: "HCC 111", RAF: 0.328, AnnualImpactDollar: 5576},

		// Metastatic and pancreatic cancer.
		{Code: "C78.00", Description: "Secondary malignant neoplasm of unspecified lung", Category: "HCC 8", RAF: 0.677, AnnualImpactDollar: 11509},
		{Code: "C25.9", Description: "Malignant neoplasm of pancreas, unspecified", Category: "HCC 8", RAF: 0.677, AnnualImpactDollar: 11509},

		// Stroke and anoxic injury.
		{Code: "I63.9", Description: "Cerebral infarction, unspecified", Category: "HCC 100", RAF: 0.35, AnnualImpactDollar: 5950},
		{Code: "G93.1", Description: "Anoxic brain damage, not elsewhere classified", Category: "HCC 100", RAF: 0.35, AnnualImpactDollar: 5950},

		// Liver failure and cirrhosis.
		{Code: "K72.90", Description: "Hepatic failure, unspecified without coma", Category: "HCC 27", RAF: 0.675, AnnualImpactDollar: 11475},
		{Code: "K70.30", Description: "Alcoholic cirrhosis of liver without ascites", Category: "HCC 27", RAF: 0.675, AnnualImpactDollar: 11475},

		// Substance dependence.
		{Code: "F10.20", Description: "Alcohol dependence, uncomplicated", Category: "HCC 54", RAF: 0.328, AnnualImpactDollar: 5576},
		{Code: "F11.20", Description: "Opioid dependence, uncomplicated", Category: "HCC 54", RAF: 0.328, AnnualImpactDollar: 5576},
	}
}
